package payment

import (
	"context"
	"encoding/json"
	"strings"

	"emperror.dev/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/ServerHub/app/models"
)

// ConfigReader reads one provider configuration row.
type ConfigReader interface {
	GetConfig(ctx context.Context, providerKey string) (*models.PaymentConfig, error)
}

// ConfigLookup answers whether a payment provider may be offered. It never
// fails: anything it cannot read or parse counts as unusable.
type ConfigLookup struct {
	reader ConfigReader
}

func NewConfigLookup(reader ConfigReader) *ConfigLookup {
	return &ConfigLookup{reader: reader}
}

// IsProviderUsable reports enabled AND credentials-valid for providerKey.
func (l *ConfigLookup) IsProviderUsable(ctx context.Context, providerKey string) bool {
	key := strings.ToLower(strings.TrimSpace(providerKey))
	cfg, err := l.reader.GetConfig(ctx, key)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error().Err(err).Str("provider", key).Msg("payment config lookup failed")
		}
		return false
	}
	if !cfg.IsEnabled {
		return false
	}

	status, err := ParseCredentialStatus(cfg.ConfigValue)
	if err != nil {
		log.Warn().Err(err).Str("provider", key).Msg("payment config value is malformed")
		return false
	}
	return status.CredentialsValid(key)
}

// ResolveProviders reads the availability of every provider once. Handlers
// call it per request and pass the value on.
func (l *ConfigLookup) ResolveProviders(ctx context.Context) Availability {
	return Availability{
		Stripe: l.IsProviderUsable(ctx, models.PaymentProviderStripe),
		PayPal: l.IsProviderUsable(ctx, models.PaymentProviderPayPal),
	}
}

// ParseCredentialStatus decodes a PaymentConfig.ConfigValue blob.
func ParseCredentialStatus(raw string) (CredentialStatus, error) {
	var status CredentialStatus
	if strings.TrimSpace(raw) == "" {
		return status, errors.New("empty config value")
	}
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		return CredentialStatus{}, errors.Wrap(err, "decode config value")
	}
	return status, nil
}
