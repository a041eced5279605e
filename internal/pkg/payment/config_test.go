package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/ServerHub/app/models"
)

func TestIsProviderUsable(t *testing.T) {
	tests := []struct {
		name    string
		seed    bool
		value   string
		enabled bool
		want    bool
	}{
		{name: "missing row", seed: false, want: false},
		{name: "enabled with valid credentials", seed: true, value: validBlob, enabled: true, want: true},
		{name: "disabled with valid credentials", seed: true, value: validBlob, enabled: false, want: false},
		{name: "disabled with garbage", seed: true, value: "][", enabled: false, want: false},
		{name: "enabled with malformed json", seed: true, value: `{"client_id_set":tru`, enabled: true, want: false},
		{name: "enabled with empty value", seed: true, value: "", enabled: true, want: false},
		{name: "enabled without secret", seed: true, value: `{"client_id_set":true,"client_secret_set":false}`, enabled: true, want: false},
		{name: "enabled without client id", seed: true, value: `{"client_id_set":false,"client_secret_set":true}`, enabled: true, want: false},
		{name: "enabled with json array", seed: true, value: `[true,true]`, enabled: true, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db := newTestDB(t)
			if tc.seed {
				seedConfig(t, db, models.PaymentProviderPayPal, tc.value, tc.enabled)
			}
			lookup := NewConfigLookup(NewRepository(db))

			assert.NotPanics(t, func() {
				assert.Equal(t, tc.want, lookup.IsProviderUsable(context.Background(), models.PaymentProviderPayPal))
			})
		})
	}
}

type failingReader struct{}

func (failingReader) GetConfig(context.Context, string) (*models.PaymentConfig, error) {
	return nil, errors.New("connection refused")
}

func TestIsProviderUsableFailsClosedOnReadError(t *testing.T) {
	lookup := NewConfigLookup(failingReader{})
	assert.False(t, lookup.IsProviderUsable(context.Background(), models.PaymentProviderStripe))
	assert.Equal(t, Availability{}, lookup.ResolveProviders(context.Background()))
}

func TestResolveProviders(t *testing.T) {
	db := newTestDB(t)
	seedConfig(t, db, models.PaymentProviderStripe, validBlob, true)
	seedConfig(t, db, models.PaymentProviderPayPal, validBlob, false)

	avail := NewConfigLookup(NewRepository(db)).ResolveProviders(context.Background())
	assert.True(t, avail.Stripe)
	assert.False(t, avail.PayPal)
	assert.True(t, avail.Any())
	assert.True(t, avail.Usable("stripe"))
	assert.False(t, avail.Usable("paypal"))
	assert.False(t, avail.Usable("bitcoin"))
}

func TestParseCredentialStatus(t *testing.T) {
	status, err := ParseCredentialStatus(validBlob)
	require.NoError(t, err)
	assert.True(t, status.CredentialsValid(models.PaymentProviderPayPal))
	assert.Equal(t, EnvironmentSandbox, status.Environment)
	assert.Nil(t, status.LastVerifiedAt)

	_, err = ParseCredentialStatus("not json")
	assert.Error(t, err)
	_, err = ParseCredentialStatus("   ")
	assert.Error(t, err)
}

func TestSetEnabledCreatesAndTogglesRow(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.SetEnabled(ctx, models.PaymentProviderStripe, true))
	cfg, err := repo.GetConfig(ctx, models.PaymentProviderStripe)
	require.NoError(t, err)
	assert.True(t, cfg.IsEnabled)
	assert.Equal(t, "{}", cfg.ConfigValue)

	require.NoError(t, repo.UpsertConfigValue(ctx, models.PaymentProviderStripe, validBlob))
	require.NoError(t, repo.SetEnabled(ctx, models.PaymentProviderStripe, false))

	cfg, err = repo.GetConfig(ctx, models.PaymentProviderStripe)
	require.NoError(t, err)
	assert.False(t, cfg.IsEnabled)
	assert.Equal(t, validBlob, cfg.ConfigValue)
	assert.EqualValues(t, 1, countConfigs(t, db))
}

func TestStripeUsableWithoutPublishableKey(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ok := balanceCheckerFunc(func(context.Context) error { return nil })

	v := NewStripeValidator("sk_test_1", "", "", ok, repo)
	_, err := v.Validate(context.Background())
	require.NoError(t, err)

	_, status := loadConfig(t, db, models.PaymentProviderStripe)
	assert.Equal(t, v.Presence().ClientID, status.ClientIDSet)
	assert.True(t, NewConfigLookup(repo).IsProviderUsable(context.Background(), models.PaymentProviderStripe))

	seedConfig(t, db, models.PaymentProviderPayPal, `{"client_id_set":false,"client_secret_set":true}`, true)
	assert.False(t, NewConfigLookup(repo).IsProviderUsable(context.Background(), models.PaymentProviderPayPal))
}
