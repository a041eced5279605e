package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/ServerHub/app/repository"
	"github.com/ManuelReschke/ServerHub/internal/pkg/cache"
	"github.com/ManuelReschke/ServerHub/internal/pkg/env"
	"github.com/ManuelReschke/ServerHub/internal/pkg/oauth"
	"github.com/ManuelReschke/ServerHub/internal/pkg/payment"
	"github.com/ManuelReschke/ServerHub/internal/pkg/slots"
)

// Global controller instances
var (
	authController         *AuthController
	oauthController        *OAuthController
	serverController       *ServerController
	dashboardController    *DashboardController
	checkoutController     *CheckoutController
	adminPaymentController *AdminPaymentController
)

// SlotRegistry returns the slot registry configured through FREE_SLOT_ID.
func SlotRegistry() *slots.Registry {
	return slots.NewDefaultRegistry(env.GetEnvInt("FREE_SLOT_ID", slots.DefaultFreeSlotID))
}

// InitializeControllers wires the global controllers with the global
// repositories. InitializeFactory must have been called.
func InitializeControllers() {
	factory := repository.GetGlobalFactory()
	repos := factory.GetRepositories()
	payments := factory.GetPaymentRepository()
	registry := SlotRegistry()
	store := cache.NewStore()

	authController = NewAuthController(repos.User)
	oauthController = NewOAuthController(repos.User)
	serverController = NewServerController(repos, store)
	dashboardController = NewDashboardController(repos, registry, store)
	checkoutController = NewCheckoutController(
		registry,
		payments,
		payment.NewCheckoutServiceFromEnv(payments, registry),
		oauth.PublicBaseURL(),
	)
	adminPaymentController = NewAdminPaymentController(
		payments,
		payment.NewPayPalValidatorFromEnv(payments),
		payment.NewStripeValidatorFromEnv(payments),
	)
}

// Adapter functions used by the router

func HandleStart(c *fiber.Ctx) error {
	return serverController.HandleIndex(c)
}

func HandleServerShow(c *fiber.Ctx) error {
	return serverController.HandleShow(c)
}

func HandleServerVote(c *fiber.Ctx) error {
	return serverController.HandleVote(c)
}

func HandleAuthLogin(c *fiber.Ctx) error {
	return authController.HandleLogin(c)
}

func HandleAuthRegister(c *fiber.Ctx) error {
	return authController.HandleRegister(c)
}

func HandleAuthLogout(c *fiber.Ctx) error {
	return authController.HandleLogout(c)
}

func HandleOAuthCallback(c *fiber.Ctx) error {
	return oauthController.HandleCallback(c)
}

func HandleDashboard(c *fiber.Ctx) error {
	return dashboardController.HandleDashboard(c)
}

func HandleDashboardServerNew(c *fiber.Ctx) error {
	return dashboardController.HandleServerNew(c)
}

func HandleDashboardBannerNew(c *fiber.Ctx) error {
	return dashboardController.HandleBannerNew(c)
}

func HandleDashboardServerDelete(c *fiber.Ctx) error {
	return dashboardController.HandleServerDelete(c)
}

func HandleAdvertise(c *fiber.Ctx) error {
	return checkoutController.HandleAdvertise(c)
}

func HandleCheckout(c *fiber.Ctx) error {
	return checkoutController.HandleCheckout(c)
}

func HandleAPICheckout(c *fiber.Ctx) error {
	return checkoutController.HandleAPICheckout(c)
}

func HandleAdminPayments(c *fiber.Ctx) error {
	return adminPaymentController.HandlePayments(c)
}

func HandleAdminPaymentToggle(c *fiber.Ctx) error {
	return adminPaymentController.HandleToggle(c)
}

// HandleAdminValidatePayPal verifies the PayPal credentials of the server.
func HandleAdminValidatePayPal(c *fiber.Ctx) error {
	return adminPaymentController.HandleValidate("paypal")(c)
}

// HandleAdminValidateStripe verifies the Stripe secret key of the server.
func HandleAdminValidateStripe(c *fiber.Ctx) error {
	return adminPaymentController.HandleValidate("stripe")(c)
}
