package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/ServerHub/app/models"
	"github.com/ManuelReschke/ServerHub/internal/pkg/payment"
	"github.com/ManuelReschke/ServerHub/internal/pkg/slots"
	"github.com/ManuelReschke/ServerHub/internal/pkg/usercontext"
)

const usableBlob = `{"client_id_set":true,"client_secret_set":true,"environment":"sandbox"}`

func getPage(t *testing.T, app *fiber.App, path string) string {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return readBody(t, resp)
}

func TestAdvertiseFormDisablesButtonWhileSubmitting(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.Package{ID: "top50-30", SlotID: 3, Name: "Top-50 Month", PriceCents: 1499, DurationDays: 30, IsActive: true}).Error)
	require.NoError(t, db.Create(&models.PaymentConfig{ConfigKey: models.PaymentProviderStripe, ConfigValue: usableBlob, IsEnabled: true}).Error)

	payments := payment.NewRepository(db)
	cc := NewCheckoutController(slots.NewDefaultRegistry(slots.DefaultFreeSlotID), payments, nil, "https://serverhub.test")

	app := fiber.New(fiber.Config{Views: newTestViews()})
	app.Use(withUser(player))
	app.Get("/advertise", cc.HandleAdvertise)

	page := getPage(t, app, "/advertise")
	assert.Contains(t, page, "Book now")
	assert.Contains(t, page, `action="/checkout" hx-boost="true" hx-disabled-elt="find button"`)
}

func TestAdminValidateButtonDisablesItself(t *testing.T) {
	db := newTestDB(t)
	ac := NewAdminPaymentController(payment.NewRepository(db), &stubValidator{}, &stubValidator{})

	admin := usercontext.UserContext{UserID: 1, Username: "admin", IsLoggedIn: true, IsAdmin: true}
	app := fiber.New(fiber.Config{Views: newTestViews()})
	app.Use(withUser(admin))
	app.Get("/admin/payments", ac.HandlePayments)

	page := getPage(t, app, "/admin/payments")
	assert.Equal(t, 2, strings.Count(page, `hx-disabled-elt="this">Validate</button>`))
}
