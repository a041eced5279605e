package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ManuelReschke/ServerHub/app/models"
	"github.com/ManuelReschke/ServerHub/internal/pkg/env"
)

const (
	defaultPayPalSandboxAPIURL = "https://api-m.sandbox.paypal.com"
	defaultPayPalLiveAPIURL    = "https://api-m.paypal.com"
	payPalTokenPath            = "/v1/oauth2/token"
)

// Client id prefixes PayPal hands out for sandbox apps. Best effort only; a
// wrong guess is corrected by the live fallback in Validate.
var payPalSandboxPrefixes = []string{"sb-", "AZ"}

// PayPalCredentials are the secrets the server process holds for PayPal.
type PayPalCredentials struct {
	ClientID     string
	ClientSecret string
	WebhookID    string
}

// PayPalValidator checks that the PayPal credentials can obtain an access
// token and records the verified environment.
type PayPalValidator struct {
	Credentials   PayPalCredentials
	SandboxAPIURL string
	LiveAPIURL    string

	HTTPClient *http.Client

	repo Repository
	now  func() time.Time
}

func NewPayPalValidator(creds PayPalCredentials, repo Repository) *PayPalValidator {
	return &PayPalValidator{
		Credentials: PayPalCredentials{
			ClientID:     strings.TrimSpace(creds.ClientID),
			ClientSecret: strings.TrimSpace(creds.ClientSecret),
			WebhookID:    strings.TrimSpace(creds.WebhookID),
		},
		SandboxAPIURL: defaultPayPalSandboxAPIURL,
		LiveAPIURL:    defaultPayPalLiveAPIURL,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		repo: repo,
		now:  time.Now,
	}
}

func NewPayPalValidatorFromEnv(repo Repository) *PayPalValidator {
	v := NewPayPalValidator(PayPalCredentials{
		ClientID:     env.GetEnv("PAYPAL_CLIENT_ID", ""),
		ClientSecret: env.GetEnv("PAYPAL_CLIENT_SECRET", ""),
		WebhookID:    env.GetEnv("PAYPAL_WEBHOOK_ID", ""),
	}, repo)
	v.SandboxAPIURL = strings.TrimSpace(env.GetEnv("PAYPAL_SANDBOX_API_URL", defaultPayPalSandboxAPIURL))
	v.LiveAPIURL = strings.TrimSpace(env.GetEnv("PAYPAL_LIVE_API_URL", defaultPayPalLiveAPIURL))
	return v
}

func (v *PayPalValidator) Presence() CredentialPresence {
	return CredentialPresence{
		ClientID:     v.Credentials.ClientID != "",
		ClientSecret: v.Credentials.ClientSecret != "",
		WebhookID:    v.Credentials.WebhookID != "",
	}
}

// GuessPayPalEnvironment classifies a client id as sandbox or live.
func GuessPayPalEnvironment(clientID string) Environment {
	if strings.Contains(strings.ToLower(clientID), "sandbox") {
		return EnvironmentSandbox
	}
	for _, prefix := range payPalSandboxPrefixes {
		if strings.HasPrefix(clientID, prefix) {
			return EnvironmentSandbox
		}
	}
	return EnvironmentLive
}

// Validate requests a token from the guessed environment. A failed sandbox
// attempt is retried once against live. Only a successful check is
// persisted; the returned error is reserved for persistence failures.
func (v *PayPalValidator) Validate(ctx context.Context) (CredentialCheckResult, error) {
	presence := v.Presence()
	if !presence.ClientID || !presence.ClientSecret {
		return NotConfigured{}, nil
	}

	environment := GuessPayPalEnvironment(v.Credentials.ClientID)
	token, err := v.fetchToken(ctx, environment)
	if err != nil && environment == EnvironmentSandbox {
		log.Info().Err(err).Msg("paypal sandbox token request failed, retrying against live")
		environment = EnvironmentLive
		token, err = v.fetchToken(ctx, environment)
	}
	if err != nil {
		log.Warn().Err(err).Str("environment", string(environment)).Msg("paypal credentials rejected")
		return Invalid{Detail: tokenErrorDetail(err)}, nil
	}

	now := v.now().UTC()
	status := CredentialStatus{
		ClientIDSet:     presence.ClientID,
		ClientSecretSet: presence.ClientSecret,
		WebhookIDSet:    presence.WebhookID,
		Environment:     environment,
		LastVerifiedAt:  &now,
	}
	if err := persistStatus(ctx, v.repo, models.PaymentProviderPayPal, status); err != nil {
		return nil, err
	}

	return Valid{Environment: environment, Expiry: token.Expiry}, nil
}

func (v *PayPalValidator) fetchToken(ctx context.Context, environment Environment) (*oauth2.Token, error) {
	base := v.LiveAPIURL
	if environment == EnvironmentSandbox {
		base = v.SandboxAPIURL
	}

	cfg := clientcredentials.Config{
		ClientID:     v.Credentials.ClientID,
		ClientSecret: v.Credentials.ClientSecret,
		TokenURL:     strings.TrimRight(base, "/") + payPalTokenPath,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	if v.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, v.HTTPClient)
	}
	return cfg.Token(ctx)
}

func tokenErrorDetail(err error) string {
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) {
		if rErr.ErrorDescription != "" {
			return rErr.ErrorDescription
		}
		if rErr.ErrorCode != "" {
			return rErr.ErrorCode
		}
		if rErr.Response != nil {
			return rErr.Response.Status
		}
	}
	return err.Error()
}

func persistStatus(ctx context.Context, repo Repository, providerKey string, status CredentialStatus) error {
	raw, err := json.Marshal(status)
	if err != nil {
		return errors.Wrap(err, "encode credential status")
	}
	return repo.UpsertConfigValue(ctx, providerKey, string(raw))
}
