package payment

import (
	"time"

	"github.com/ManuelReschke/ServerHub/app/models"
)

// Environment is the provider environment a credential belongs to.
type Environment string

const (
	EnvironmentSandbox Environment = "sandbox"
	EnvironmentLive    Environment = "live"
)

// CheckoutResult is the outcome of one checkout attempt. It is one of
// Redirect, ManualInstructions or NeedsConfiguration.
type CheckoutResult interface {
	isCheckoutResult()
}

// Redirect sends the browser to URL with a full navigation.
type Redirect struct {
	URL string
}

// ManualInstructions asks the buyer to pay by hand and quote ReferenceID in
// the payment note. Activation happens asynchronously.
type ManualInstructions struct {
	RecipientAddress string
	ReferenceID      string
	Text             string
}

// NeedsConfiguration means Provider is not usable right now; the buyer may
// retry with another provider.
type NeedsConfiguration struct {
	Provider string
}

func (Redirect) isCheckoutResult()           {}
func (ManualInstructions) isCheckoutResult() {}
func (NeedsConfiguration) isCheckoutResult() {}

// CredentialCheckResult is the outcome of a credential validation. It is one
// of NotConfigured, Invalid or Valid.
type CredentialCheckResult interface {
	isCredentialCheckResult()
}

type NotConfigured struct{}

type Invalid struct {
	Detail string
}

type Valid struct {
	Environment Environment
	Expiry      time.Time
}

func (NotConfigured) isCredentialCheckResult() {}
func (Invalid) isCredentialCheckResult()       {}
func (Valid) isCredentialCheckResult()         {}

// CredentialStatus is the JSON blob stored in PaymentConfig.ConfigValue.
type CredentialStatus struct {
	ClientIDSet     bool        `json:"client_id_set"`
	ClientSecretSet bool        `json:"client_secret_set"`
	WebhookIDSet    bool        `json:"webhook_id_set"`
	Environment     Environment `json:"environment,omitempty"`
	LastVerifiedAt  *time.Time  `json:"last_verified_at,omitempty"`
}

// CredentialsValid reports whether the credentials providerKey needs for a
// checkout are present. Stripe checkouts run on the secret key alone.
func (s CredentialStatus) CredentialsValid(providerKey string) bool {
	if providerKey == models.PaymentProviderStripe {
		return s.ClientSecretSet
	}
	return s.ClientIDSet && s.ClientSecretSet
}

// CredentialPresence tells which secrets the server process holds.
type CredentialPresence struct {
	ClientID     bool
	ClientSecret bool
	WebhookID    bool
}

// Availability lists the providers usable for the current request.
type Availability struct {
	Stripe bool
	PayPal bool
}

// Usable reports whether provider is enabled in this availability snapshot.
func (a Availability) Usable(provider string) bool {
	switch provider {
	case models.PaymentProviderStripe:
		return a.Stripe
	case models.PaymentProviderPayPal:
		return a.PayPal
	default:
		return false
	}
}

// Any reports whether at least one provider is usable.
func (a Availability) Any() bool {
	return a.Stripe || a.PayPal
}

// CreateCheckoutRequest is the input of the checkout creation call.
type CreateCheckoutRequest struct {
	PackageID     string `json:"packageId" validate:"required,max=64"`
	SlotID        int    `json:"slotId" validate:"required,gt=0"`
	SuccessURL    string `json:"successUrl" validate:"required,url"`
	CancelURL     string `json:"cancelUrl" validate:"required,url"`
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=stripe paypal"`
	UserID        uint   `json:"-" validate:"required"`
}

// CreateCheckoutResponse is the wire shape of the checkout creation call.
// Exactly one of the three shapes is populated.
type CreateCheckoutResponse struct {
	NeedsConfiguration bool   `json:"needsConfiguration,omitempty"`
	Provider           string `json:"provider,omitempty"`
	URL                string `json:"url,omitempty"`
	PayPalEmail        string `json:"paypalEmail,omitempty"`
	PurchaseID         string `json:"purchaseId,omitempty"`
	Instructions       string `json:"instructions,omitempty"`
}
