package payment

import (
	"context"
	"fmt"
	"strings"

	"emperror.dev/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ManuelReschke/ServerHub/app/models"
	"github.com/ManuelReschke/ServerHub/internal/pkg/env"
	"github.com/ManuelReschke/ServerHub/internal/pkg/slots"
)

const defaultCurrency = "eur"

// CheckoutConfig carries the settings of the checkout creation call.
type CheckoutConfig struct {
	Currency       string
	PayPalReceiver string
}

// CheckoutConfigFromEnv reads the checkout settings from the environment.
func CheckoutConfigFromEnv() CheckoutConfig {
	return CheckoutConfig{
		Currency:       strings.ToLower(strings.TrimSpace(env.GetEnv("STRIPE_CURRENCY", defaultCurrency))),
		PayPalReceiver: strings.TrimSpace(env.GetEnv("PAYPAL_RECEIVER_EMAIL", "")),
	}
}

// CheckoutService implements the checkout creation call: it validates the
// request, records a pending purchase and asks the provider for a checkout.
type CheckoutService struct {
	repo     Repository
	lookup   *ConfigLookup
	slots    *slots.Registry
	stripe   StripeGateway
	cfg      CheckoutConfig
	validate *validator.Validate
	newID    func() string
}

// NewCheckoutService wires the service. stripe may be nil when no secret key
// is configured; stripe checkouts then report needsConfiguration.
func NewCheckoutService(repo Repository, lookup *ConfigLookup, registry *slots.Registry, stripe StripeGateway, cfg CheckoutConfig) *CheckoutService {
	if cfg.Currency == "" {
		cfg.Currency = defaultCurrency
	}
	return &CheckoutService{
		repo:     repo,
		lookup:   lookup,
		slots:    registry,
		stripe:   stripe,
		cfg:      cfg,
		validate: validator.New(),
		newID:    uuid.NewString,
	}
}

// NewCheckoutServiceFromEnv creates a checkout service with the Stripe key
// and checkout settings from the environment.
func NewCheckoutServiceFromEnv(repo Repository, registry *slots.Registry) *CheckoutService {
	var gateway StripeGateway
	if client := NewStripeClientFromEnv(); client != nil {
		gateway = client
	}
	return NewCheckoutService(repo, NewConfigLookup(repo), registry, gateway, CheckoutConfigFromEnv())
}

func (s *CheckoutService) CreateCheckout(ctx context.Context, req CreateCheckoutRequest) (*CreateCheckoutResponse, error) {
	req.PaymentMethod = strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	req.PackageID = strings.TrimSpace(req.PackageID)
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.Wrap(ErrInvalidRequest, err.Error())
	}

	slot, ok := s.slots.Lookup(req.SlotID)
	if !ok {
		return nil, errors.WithDetails(ErrInvalidRequest, "slot_id", req.SlotID)
	}
	if s.slots.IsFree(slot.ID) {
		return nil, errors.WithDetails(ErrInvalidRequest, "reason", "free slot needs no checkout")
	}

	pkg, err := s.repo.GetActivePackage(ctx, req.PackageID, slot.ID)
	if err != nil {
		return nil, err
	}

	if !s.lookup.IsProviderUsable(ctx, req.PaymentMethod) {
		return &CreateCheckoutResponse{NeedsConfiguration: true}, nil
	}

	switch req.PaymentMethod {
	case models.PaymentProviderStripe:
		if s.stripe == nil {
			log.Warn().Msg("stripe enabled in config but STRIPE_SECRET_KEY is missing")
			return &CreateCheckoutResponse{NeedsConfiguration: true}, nil
		}
		return s.createStripeCheckout(ctx, req, slot, pkg)
	case models.PaymentProviderPayPal:
		if s.cfg.PayPalReceiver == "" {
			log.Warn().Msg("paypal enabled in config but PAYPAL_RECEIVER_EMAIL is missing")
			return &CreateCheckoutResponse{NeedsConfiguration: true}, nil
		}
		return s.createPayPalCheckout(ctx, req, pkg)
	default:
		return nil, errors.WithDetails(ErrUnsupportedProvider, "provider", req.PaymentMethod)
	}
}

func (s *CheckoutService) createStripeCheckout(ctx context.Context, req CreateCheckoutRequest, slot slots.Slot, pkg *models.Package) (*CreateCheckoutResponse, error) {
	purchase, err := s.recordPurchase(ctx, req, pkg)
	if err != nil {
		return nil, err
	}

	sess, err := s.stripe.CreateCheckoutSession(ctx, StripeSessionInput{
		PurchaseID:  purchase.PurchaseID,
		ProductName: fmt.Sprintf("%s: %s (%d days)", slot.Name, pkg.Name, pkg.DurationDays),
		AmountCents: pkg.PriceCents,
		Currency:    s.cfg.Currency,
		SuccessURL:  req.SuccessURL,
		CancelURL:   req.CancelURL,
		Metadata: map[string]string{
			"purchase_id": purchase.PurchaseID,
			"slot_id":     fmt.Sprintf("%d", slot.ID),
			"package_id":  pkg.ID,
			"user_id":     fmt.Sprintf("%d", req.UserID),
		},
	})
	if err != nil {
		if markErr := s.repo.SetPurchaseStatus(ctx, purchase.PurchaseID, models.PurchaseStatusCancelled); markErr != nil {
			log.Error().Err(markErr).Str("purchase_id", purchase.PurchaseID).Msg("failed to cancel purchase")
		}
		return nil, errors.WrapWithDetails(err, "create stripe checkout session", "purchase_id", purchase.PurchaseID)
	}

	if err := s.repo.SetPurchaseProviderRef(ctx, purchase.PurchaseID, sess.ID); err != nil {
		log.Error().Err(err).Str("purchase_id", purchase.PurchaseID).Msg("failed to store stripe session id")
	}

	return &CreateCheckoutResponse{
		Provider: models.PaymentProviderStripe,
		URL:      sess.URL,
	}, nil
}

func (s *CheckoutService) createPayPalCheckout(ctx context.Context, req CreateCheckoutRequest, pkg *models.Package) (*CreateCheckoutResponse, error) {
	purchase, err := s.recordPurchase(ctx, req, pkg)
	if err != nil {
		return nil, err
	}

	return &CreateCheckoutResponse{
		Provider:     models.PaymentProviderPayPal,
		PayPalEmail:  s.cfg.PayPalReceiver,
		PurchaseID:   purchase.PurchaseID,
		Instructions: PayPalInstructions(pkg, s.cfg.Currency, s.cfg.PayPalReceiver, purchase.PurchaseID),
	}, nil
}

func (s *CheckoutService) recordPurchase(ctx context.Context, req CreateCheckoutRequest, pkg *models.Package) (*models.Purchase, error) {
	purchase := &models.Purchase{
		PurchaseID:  s.newID(),
		UserID:      req.UserID,
		SlotID:      req.SlotID,
		PackageID:   pkg.ID,
		Provider:    req.PaymentMethod,
		Status:      models.PurchaseStatusPending,
		AmountCents: pkg.PriceCents,
		Currency:    s.cfg.Currency,
	}
	if err := s.repo.CreatePurchase(ctx, purchase); err != nil {
		return nil, errors.WrapIf(err, "record purchase")
	}
	return purchase, nil
}

// PayPalInstructions renders the manual payment text shown to the buyer.
func PayPalInstructions(pkg *models.Package, currency, receiver, purchaseID string) string {
	return fmt.Sprintf(
		"Send %s %s via PayPal to %s and put the reference %s into the payment note. "+
			"Your %s package is activated once PayPal confirms the payment.",
		pkg.PriceLabel(), strings.ToUpper(currency), receiver, purchaseID, pkg.Name,
	)
}
