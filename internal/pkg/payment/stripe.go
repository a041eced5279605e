package payment

import (
	"context"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/ManuelReschke/ServerHub/app/models"
	"github.com/ManuelReschke/ServerHub/internal/pkg/env"
)

// StripeSessionInput describes one hosted checkout session.
type StripeSessionInput struct {
	PurchaseID  string
	ProductName string
	AmountCents int64
	Currency    string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

// StripeSession is the part of a created checkout session we keep.
type StripeSession struct {
	ID  string
	URL string
}

// StripeGateway creates hosted checkout sessions.
type StripeGateway interface {
	CreateCheckoutSession(ctx context.Context, in StripeSessionInput) (*StripeSession, error)
}

// StripeBalanceChecker performs a cheap authenticated call to prove a key works.
type StripeBalanceChecker interface {
	CheckBalance(ctx context.Context) error
}

// StripeClient talks to the Stripe API with its own key instead of the
// package level stripe.Key.
type StripeClient struct {
	api *client.API
}

// NewStripeClient returns nil when secretKey is empty.
func NewStripeClient(secretKey string) *StripeClient {
	key := strings.TrimSpace(secretKey)
	if key == "" {
		return nil
	}
	api := &client.API{}
	api.Init(key, nil)
	return &StripeClient{api: api}
}

func NewStripeClientFromEnv() *StripeClient {
	return NewStripeClient(env.GetEnv("STRIPE_SECRET_KEY", ""))
}

func (c *StripeClient) CreateCheckoutSession(ctx context.Context, in StripeSessionInput) (*StripeSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(in.SuccessURL),
		CancelURL:         stripe.String(in.CancelURL),
		ClientReferenceID: stripe.String(in.PurchaseID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(in.Currency),
					UnitAmount: stripe.Int64(in.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(in.ProductName),
					},
				},
			},
		},
	}
	params.Context = ctx
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, errors.Wrap(err, "stripe checkout session")
	}
	return &StripeSession{ID: sess.ID, URL: sess.URL}, nil
}

func (c *StripeClient) CheckBalance(ctx context.Context) error {
	params := &stripe.BalanceParams{}
	params.Context = ctx
	_, err := c.api.Balance.Get(params)
	return errors.WrapIf(err, "stripe balance")
}

// StripeValidator checks the Stripe secret key and records the outcome.
type StripeValidator struct {
	secretKey      string
	publishableKey string
	webhookSecret  string
	checker        StripeBalanceChecker
	repo           Repository
	now            func() time.Time
}

func NewStripeValidator(secretKey, publishableKey, webhookSecret string, checker StripeBalanceChecker, repo Repository) *StripeValidator {
	return &StripeValidator{
		secretKey:      strings.TrimSpace(secretKey),
		publishableKey: strings.TrimSpace(publishableKey),
		webhookSecret:  strings.TrimSpace(webhookSecret),
		checker:        checker,
		repo:           repo,
		now:            time.Now,
	}
}

func NewStripeValidatorFromEnv(repo Repository) *StripeValidator {
	secret := env.GetEnv("STRIPE_SECRET_KEY", "")
	var checker StripeBalanceChecker
	if c := NewStripeClient(secret); c != nil {
		checker = c
	}
	return NewStripeValidator(
		secret,
		env.GetEnv("STRIPE_PUBLISHABLE_KEY", ""),
		env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
		checker,
		repo,
	)
}

func (v *StripeValidator) Presence() CredentialPresence {
	return CredentialPresence{
		ClientID:     v.publishableKey != "",
		ClientSecret: v.secretKey != "",
		WebhookID:    v.webhookSecret != "",
	}
}

// StripeEnvironment classifies a secret key by its test/live prefix.
func StripeEnvironment(secretKey string) Environment {
	if strings.HasPrefix(secretKey, "sk_test_") || strings.HasPrefix(secretKey, "rk_test_") {
		return EnvironmentSandbox
	}
	return EnvironmentLive
}

func (v *StripeValidator) Validate(ctx context.Context) (CredentialCheckResult, error) {
	if v.secretKey == "" || v.checker == nil {
		return NotConfigured{}, nil
	}

	environment := StripeEnvironment(v.secretKey)
	if err := v.checker.CheckBalance(ctx); err != nil {
		return Invalid{Detail: err.Error()}, nil
	}

	now := v.now().UTC()
	presence := v.Presence()
	status := CredentialStatus{
		ClientIDSet:     presence.ClientID,
		ClientSecretSet: presence.ClientSecret,
		WebhookIDSet:    presence.WebhookID,
		Environment:     environment,
		LastVerifiedAt:  &now,
	}
	if err := persistStatus(ctx, v.repo, models.PaymentProviderStripe, status); err != nil {
		return nil, err
	}
	return Valid{Environment: environment}, nil
}
