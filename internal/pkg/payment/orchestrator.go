package payment

import (
	"context"
	"strings"

	"emperror.dev/errors"
	"github.com/rs/zerolog/log"

	"github.com/ManuelReschke/ServerHub/app/models"
	"github.com/ManuelReschke/ServerHub/internal/pkg/slots"
)

// DefaultCancelPath is the page a cancelled hosted checkout returns to.
const DefaultCancelPath = "/advertise"

// CheckoutCreator performs the checkout creation call.
type CheckoutCreator interface {
	CreateCheckout(ctx context.Context, req CreateCheckoutRequest) (*CreateCheckoutResponse, error)
}

// CheckoutInput is one buyer request from the checkout modal.
type CheckoutInput struct {
	Authenticated bool
	UserID        uint
	SlotID        int
	PackageID     string
	Provider      string
}

// Orchestrator decides between a free redirect, a provider checkout and
// manual payment instructions.
type Orchestrator struct {
	slots         *slots.Registry
	creator       CheckoutCreator
	publicBaseURL string
	cancelPath    string
}

func NewOrchestrator(registry *slots.Registry, creator CheckoutCreator, publicBaseURL string) *Orchestrator {
	return &Orchestrator{
		slots:         registry,
		creator:       creator,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		cancelPath:    DefaultCancelPath,
	}
}

// Checkout runs one checkout attempt. The returned error is one of
// ErrAuthenticationRequired, ErrUnsupportedProvider or ErrCheckoutFailed.
func (o *Orchestrator) Checkout(ctx context.Context, in CheckoutInput) (CheckoutResult, error) {
	if !in.Authenticated || in.UserID == 0 {
		return nil, ErrAuthenticationRequired
	}

	if o.slots.IsFree(in.SlotID) {
		return Redirect{URL: o.slots.RedirectPath(in.SlotID, in.PackageID)}, nil
	}

	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		provider = models.PaymentProviderStripe
	}
	if provider != models.PaymentProviderStripe && provider != models.PaymentProviderPayPal {
		return nil, errors.WithDetails(ErrUnsupportedProvider, "provider", in.Provider)
	}

	resp, err := o.creator.CreateCheckout(ctx, CreateCheckoutRequest{
		PackageID:     in.PackageID,
		SlotID:        in.SlotID,
		SuccessURL:    o.SuccessURL(in.SlotID, in.PackageID),
		CancelURL:     o.CancelURL(),
		PaymentMethod: provider,
		UserID:        in.UserID,
	})
	if err != nil {
		log.Error().Err(err).
			Uint("user_id", in.UserID).
			Int("slot_id", in.SlotID).
			Str("package_id", in.PackageID).
			Str("provider", provider).
			Msg("checkout creation failed")
		return nil, errors.WithStack(ErrCheckoutFailed)
	}

	return o.interpret(provider, resp)
}

func (o *Orchestrator) interpret(provider string, resp *CreateCheckoutResponse) (CheckoutResult, error) {
	switch {
	case resp == nil:
		return nil, errors.WithStack(ErrCheckoutFailed)
	case resp.NeedsConfiguration:
		return NeedsConfiguration{Provider: provider}, nil
	case resp.Provider == models.PaymentProviderStripe && resp.URL != "":
		return Redirect{URL: resp.URL}, nil
	case resp.Provider == models.PaymentProviderPayPal:
		return ManualInstructions{
			RecipientAddress: resp.PayPalEmail,
			ReferenceID:      resp.PurchaseID,
			Text:             resp.Instructions,
		}, nil
	default:
		log.Error().Str("provider", provider).Str("response_provider", resp.Provider).Msg("unexpected checkout response shape")
		return nil, errors.WithStack(ErrCheckoutFailed)
	}
}

// SuccessURL is where the hosted checkout returns after payment.
func (o *Orchestrator) SuccessURL(slotID int, packageID string) string {
	path := o.slots.RedirectPath(slotID, packageID)
	sep := "&"
	if !strings.Contains(path, "?") {
		sep = "?"
	}
	return o.publicBaseURL + path + sep + "payment=success"
}

// CancelURL is where the hosted checkout returns when the buyer aborts.
func (o *Orchestrator) CancelURL() string {
	return o.publicBaseURL + o.cancelPath + "?payment=cancelled"
}
