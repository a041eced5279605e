package controllers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/ManuelReschke/ServerHub/app/models"
	"github.com/ManuelReschke/ServerHub/internal/pkg/constants"
	"github.com/ManuelReschke/ServerHub/internal/pkg/payment"
	"github.com/ManuelReschke/ServerHub/internal/pkg/slots"
	"github.com/ManuelReschke/ServerHub/internal/pkg/usercontext"
)

const checkoutTimeout = 15 * time.Second

// SlotOffer groups the active packages of one slot for the advertise page.
type SlotOffer struct {
	Slot     slots.Slot
	Free     bool
	Packages []models.Package
}

// CheckoutController serves the slot catalogue and runs checkouts.
type CheckoutController struct {
	slots        *slots.Registry
	payments     payment.Repository
	lookup       *payment.ConfigLookup
	creator      payment.CheckoutCreator
	orchestrator *payment.Orchestrator
}

func NewCheckoutController(registry *slots.Registry, payments payment.Repository, creator payment.CheckoutCreator, publicBaseURL string) *CheckoutController {
	return &CheckoutController{
		slots:        registry,
		payments:     payments,
		lookup:       payment.NewConfigLookup(payments),
		creator:      creator,
		orchestrator: payment.NewOrchestrator(registry, creator, publicBaseURL),
	}
}

// HandleAdvertise renders the slot catalogue with the checkout modal. The
// provider availability is resolved once here and handed to the template.
func (cc *CheckoutController) HandleAdvertise(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), checkoutTimeout)
	defer cancel()

	availability := cc.lookup.ResolveProviders(ctx)

	pkgs, err := cc.payments.ListActivePackages(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load packages")
		pkgs = nil
	}

	return c.Render("advertise", viewData(c, "Advertise", fiber.Map{
		"Offers":        cc.offers(pkgs),
		"Availability":  availability,
		"PaymentStatus": c.Query("payment"),
	}), layoutMain)
}

func (cc *CheckoutController) offers(pkgs []models.Package) []SlotOffer {
	bySlot := make(map[int][]models.Package)
	for _, p := range pkgs {
		bySlot[p.SlotID] = append(bySlot[p.SlotID], p)
	}
	all := cc.slots.All()
	out := make([]SlotOffer, 0, len(all))
	for _, s := range all {
		out = append(out, SlotOffer{
			Slot:     s,
			Free:     cc.slots.IsFree(s.ID),
			Packages: bySlot[s.ID],
		})
	}
	return out
}

// HandleCheckout processes the checkout modal form.
func (cc *CheckoutController) HandleCheckout(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)

	slotID, err := strconv.Atoi(strings.TrimSpace(c.FormValue("slot_id")))
	if err != nil {
		return flashError(c, "Please choose a valid slot.", payment.DefaultCancelPath)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), checkoutTimeout)
	defer cancel()

	res, err := cc.orchestrator.Checkout(ctx, payment.CheckoutInput{
		Authenticated: uc.IsLoggedIn,
		UserID:        uc.UserID,
		SlotID:        slotID,
		PackageID:     strings.TrimSpace(c.FormValue("package_id")),
		Provider:      c.FormValue("provider"),
	})
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrAuthenticationRequired):
			return flashError(c, "Please log in to book an advertising slot.", constants.LoginRoute)
		case errors.Is(err, payment.ErrUnsupportedProvider):
			return flashError(c, "This payment method is not supported.", payment.DefaultCancelPath)
		default:
			return flashError(c, "Checkout failed. Please try again in a moment.", payment.DefaultCancelPath)
		}
	}

	switch r := res.(type) {
	case payment.Redirect:
		// hosted checkout pages need a full navigation; htmx ignores
		// HX-Redirect on 3xx answers
		if c.Get("HX-Request") == "true" {
			c.Set("HX-Redirect", r.URL)
			return c.SendStatus(fiber.StatusOK)
		}
		return c.Redirect(r.URL, fiber.StatusSeeOther)
	case payment.ManualInstructions:
		return c.Render("checkout_manual", viewData(c, "Complete your payment", fiber.Map{
			"Instructions": r,
		}), layoutMain)
	case payment.NeedsConfiguration:
		return flashError(c, providerLabel(r.Provider)+" is not available right now. Please choose another payment method.", payment.DefaultCancelPath)
	default:
		return flashError(c, "Checkout failed. Please try again in a moment.", payment.DefaultCancelPath)
	}
}

// HandleAPICheckout is the JSON checkout creation call.
func (cc *CheckoutController) HandleAPICheckout(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	if !uc.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": payment.ErrAuthenticationRequired.Error(),
		})
	}

	var req payment.CreateCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_request",
			"message": "request body must be JSON",
		})
	}
	req.UserID = uc.UserID

	ctx, cancel := context.WithTimeout(c.UserContext(), checkoutTimeout)
	defer cancel()

	resp, err := cc.creator.CreateCheckout(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrInvalidRequest),
			errors.Is(err, payment.ErrUnsupportedProvider):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "invalid_request",
				"message": err.Error(),
			})
		case errors.Is(err, payment.ErrPackageNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error":   "package_not_found",
				"message": payment.ErrPackageNotFound.Error(),
			})
		default:
			log.Error().Err(err).Uint("user_id", uc.UserID).Msg("api checkout failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "checkout_failed",
				"message": payment.ErrCheckoutFailed.Error(),
			})
		}
	}
	return c.JSON(resp)
}

func providerLabel(provider string) string {
	switch provider {
	case models.PaymentProviderStripe:
		return "Stripe"
	case models.PaymentProviderPayPal:
		return "PayPal"
	default:
		return provider
	}
}
