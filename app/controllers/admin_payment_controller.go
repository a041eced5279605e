package controllers

import (
	"context"
	"time"

	"emperror.dev/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/ServerHub/app/models"
	"github.com/ManuelReschke/ServerHub/internal/pkg/constants"
	"github.com/ManuelReschke/ServerHub/internal/pkg/payment"
	"github.com/ManuelReschke/ServerHub/internal/pkg/usercontext"
)

const validationTimeout = 20 * time.Second

// ProviderRow is one provider line on the admin payments page.
type ProviderRow struct {
	Key        string
	Label      string
	Enabled    bool
	Usable     bool
	Status     payment.CredentialStatus
	Malformed  bool
	Presence   payment.CredentialPresence
	ValidateAt string
}

// AdminPaymentController lets admins toggle providers and verify credentials.
type AdminPaymentController struct {
	payments   payment.Repository
	lookup     *payment.ConfigLookup
	validators map[string]payment.CredentialValidator
}

func NewAdminPaymentController(payments payment.Repository, paypal, stripe payment.CredentialValidator) *AdminPaymentController {
	return &AdminPaymentController{
		payments: payments,
		lookup:   payment.NewConfigLookup(payments),
		validators: map[string]payment.CredentialValidator{
			models.PaymentProviderPayPal: paypal,
			models.PaymentProviderStripe: stripe,
		},
	}
}

func (ac *AdminPaymentController) HandlePayments(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), validationTimeout)
	defer cancel()

	rows := make([]ProviderRow, 0, 2)
	for _, key := range []string{models.PaymentProviderStripe, models.PaymentProviderPayPal} {
		row := ProviderRow{
			Key:        key,
			Label:      providerLabel(key),
			Usable:     ac.lookup.IsProviderUsable(ctx, key),
			ValidateAt: "/api/admin/" + key + "/validate",
		}
		if v := ac.validators[key]; v != nil {
			row.Presence = v.Presence()
		}

		cfg, err := ac.payments.GetConfig(ctx, key)
		switch {
		case err == nil:
			row.Enabled = cfg.IsEnabled
			status, perr := payment.ParseCredentialStatus(cfg.ConfigValue)
			row.Status = status
			row.Malformed = perr != nil
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			log.Error().Err(err).Str("provider", key).Msg("failed to load payment config")
		}
		rows = append(rows, row)
	}

	return c.Render("admin/payments", viewData(c, "Payment providers", fiber.Map{
		"Providers": rows,
	}), layoutMain)
}

// HandleToggle flips the is_enabled flag of a provider.
func (ac *AdminPaymentController) HandleToggle(c *fiber.Ctx) error {
	key := c.Params("provider")
	if _, ok := ac.validators[key]; !ok {
		return flashError(c, "Unknown payment provider.", constants.AdminPaymentsRoute)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), validationTimeout)
	defer cancel()

	enabled := false
	cfg, err := ac.payments.GetConfig(ctx, key)
	if err == nil {
		enabled = cfg.IsEnabled
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error().Err(err).Str("provider", key).Msg("failed to load payment config")
		return flashError(c, "Could not load the provider configuration.", constants.AdminPaymentsRoute)
	}

	if err := ac.payments.SetEnabled(ctx, key, !enabled); err != nil {
		log.Error().Err(err).Str("provider", key).Msg("failed to toggle provider")
		return flashError(c, "Could not update the provider.", constants.AdminPaymentsRoute)
	}

	log.Info().Str("provider", key).Bool("enabled", !enabled).Uint("admin_id", usercontext.GetUserID(c)).Msg("payment provider toggled")
	state := "disabled"
	if !enabled {
		state = "enabled"
	}
	return flashSuccess(c, providerLabel(key)+" "+state+".", constants.AdminPaymentsRoute)
}

// HandleValidate runs the credential check of the provider in the route and
// answers with a ValidationReport. Invalid credentials are a 200 answer.
func (ac *AdminPaymentController) HandleValidate(provider string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, ok := ac.validators[provider]
		if !ok || v == nil {
			return c.Status(fiber.StatusInternalServerError).JSON(payment.ErrorReport(providerLabel(provider), payment.CredentialPresence{}))
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), validationTimeout)
		defer cancel()

		res, err := v.Validate(ctx)
		if err != nil {
			log.Error().Err(err).Str("provider", provider).Msg("credential validation failed")
			return c.Status(fiber.StatusInternalServerError).JSON(payment.ErrorReport(providerLabel(provider), v.Presence()))
		}
		return c.JSON(payment.NewValidationReport(providerLabel(provider), res, v.Presence()))
	}
}
