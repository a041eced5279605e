package controllers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/ServerHub/internal/pkg/payment"
	"github.com/ManuelReschke/ServerHub/internal/pkg/slots"
	"github.com/ManuelReschke/ServerHub/internal/pkg/usercontext"
)

type creatorFunc func(ctx context.Context, req payment.CreateCheckoutRequest) (*payment.CreateCheckoutResponse, error)

func (f creatorFunc) CreateCheckout(ctx context.Context, req payment.CreateCheckoutRequest) (*payment.CreateCheckoutResponse, error) {
	return f(ctx, req)
}

func newCheckoutApp(uc usercontext.UserContext, creator payment.CheckoutCreator) *fiber.App {
	cc := NewCheckoutController(slots.NewDefaultRegistry(slots.DefaultFreeSlotID), nil, creator, "https://serverhub.test")

	app := fiber.New()
	app.Use(withUser(uc))
	app.Post("/checkout", cc.HandleCheckout)
	app.Post("/api/v1/checkout", cc.HandleAPICheckout)
	return app
}

func TestAPICheckoutRequiresSession(t *testing.T) {
	called := false
	app := newCheckoutApp(usercontext.Anonymous, creatorFunc(func(context.Context, payment.CreateCheckoutRequest) (*payment.CreateCheckoutResponse, error) {
		called = true
		return nil, nil
	}))

	resp, body := postJSON(t, app, "/api/v1/checkout", `{"packageId":"p1","slotId":3}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "unauthorized", body["error"])
	assert.False(t, called)
}

func TestAPICheckoutUsesSessionUser(t *testing.T) {
	var got payment.CreateCheckoutRequest
	app := newCheckoutApp(player, creatorFunc(func(_ context.Context, req payment.CreateCheckoutRequest) (*payment.CreateCheckoutResponse, error) {
		got = req
		return &payment.CreateCheckoutResponse{Provider: "stripe", URL: "https://pay.example/cs_1"}, nil
	}))

	resp, body := postJSON(t, app, "/api/v1/checkout",
		`{"packageId":"p1","slotId":3,"successUrl":"https://a.test/ok","cancelUrl":"https://a.test/no","paymentMethod":"stripe","UserID":999}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "stripe", body["provider"])
	assert.Equal(t, "https://pay.example/cs_1", body["url"])
	assert.Equal(t, player.UserID, got.UserID)
	assert.Equal(t, "p1", got.PackageID)
	assert.Equal(t, 3, got.SlotID)
}

func TestAPICheckoutErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "invalid request", err: payment.ErrInvalidRequest, status: http.StatusBadRequest, code: "invalid_request"},
		{name: "unsupported provider", err: payment.ErrUnsupportedProvider, status: http.StatusBadRequest, code: "invalid_request"},
		{name: "unknown package", err: payment.ErrPackageNotFound, status: http.StatusNotFound, code: "package_not_found"},
		{name: "provider failure", err: errors.New("stripe: api_key invalid sk_live_123"), status: http.StatusInternalServerError, code: "checkout_failed"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newCheckoutApp(player, creatorFunc(func(context.Context, payment.CreateCheckoutRequest) (*payment.CreateCheckoutResponse, error) {
				return nil, tc.err
			}))

			resp, body := postJSON(t, app, "/api/v1/checkout", `{"packageId":"p1","slotId":3}`)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, body["error"])
			assert.NotContains(t, body["message"], "sk_live")
		})
	}
}

func TestAPICheckoutNeedsConfigurationIsOK(t *testing.T) {
	app := newCheckoutApp(player, creatorFunc(func(context.Context, payment.CreateCheckoutRequest) (*payment.CreateCheckoutResponse, error) {
		return &payment.CreateCheckoutResponse{NeedsConfiguration: true}, nil
	}))

	resp, body := postJSON(t, app, "/api/v1/checkout", `{"packageId":"p1","slotId":3,"paymentMethod":"paypal"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["needsConfiguration"])
}

func TestCheckoutFormRedirects(t *testing.T) {
	stripe := creatorFunc(func(context.Context, payment.CreateCheckoutRequest) (*payment.CreateCheckoutResponse, error) {
		return &payment.CreateCheckoutResponse{Provider: "stripe", URL: "https://pay.example/cs_2"}, nil
	})
	unconfigured := creatorFunc(func(context.Context, payment.CreateCheckoutRequest) (*payment.CreateCheckoutResponse, error) {
		return &payment.CreateCheckoutResponse{NeedsConfiguration: true}, nil
	})

	tests := []struct {
		name     string
		user     usercontext.UserContext
		creator  payment.CheckoutCreator
		form     string
		location string
	}{
		{name: "anonymous user", user: usercontext.Anonymous, creator: stripe, form: "slot_id=3&package_id=p1&provider=stripe", location: "/login"},
		{name: "stripe checkout", user: player, creator: stripe, form: "slot_id=3&package_id=p1&provider=stripe", location: "https://pay.example/cs_2"},
		{name: "free slot", user: player, creator: stripe, form: "slot_id=4&package_id=free", location: "/dashboard/servers/new?type=free&slot=4&package=free"},
		{name: "provider not configured", user: player, creator: unconfigured, form: "slot_id=3&package_id=p1&provider=paypal", location: payment.DefaultCancelPath},
		{name: "unsupported provider", user: player, creator: stripe, form: "slot_id=3&package_id=p1&provider=cash", location: payment.DefaultCancelPath},
		{name: "slot not a number", user: player, creator: stripe, form: "slot_id=abc&package_id=p1", location: payment.DefaultCancelPath},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := postForm(t, newCheckoutApp(tc.user, tc.creator), "/checkout", tc.form)
			assert.GreaterOrEqual(t, resp.StatusCode, 300)
			assert.Less(t, resp.StatusCode, 400)
			assert.Equal(t, tc.location, resp.Header.Get("Location"))
		})
	}
}

func TestCheckoutFormSetsHXRedirect(t *testing.T) {
	app := newCheckoutApp(player, creatorFunc(func(context.Context, payment.CreateCheckoutRequest) (*payment.CreateCheckoutResponse, error) {
		return &payment.CreateCheckoutResponse{Provider: "stripe", URL: "https://pay.example/cs_3"}, nil
	}))

	resp := postForm(t, app, "/checkout", "slot_id=2&package_id=p2", "HX-Request", "true")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://pay.example/cs_3", resp.Header.Get("HX-Redirect"))
	assert.Empty(t, resp.Header.Get("Location"))

	resp = postForm(t, app, "/checkout", "slot_id=2&package_id=p2")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "https://pay.example/cs_3", resp.Header.Get("Location"))
	assert.Empty(t, resp.Header.Get("HX-Redirect"))
}

func TestCheckoutManualInstructionsPage(t *testing.T) {
	app := fiber.New(fiber.Config{Views: newTestViews()})
	cc := NewCheckoutController(slots.NewDefaultRegistry(slots.DefaultFreeSlotID), nil,
		creatorFunc(func(context.Context, payment.CreateCheckoutRequest) (*payment.CreateCheckoutResponse, error) {
			return &payment.CreateCheckoutResponse{
				Provider:     "paypal",
				PayPalEmail:  "a@b.com",
				PurchaseID:   "PID1",
				Instructions: "pay now",
			}, nil
		}), "https://serverhub.test")
	app.Use(withUser(player))
	app.Post("/checkout", cc.HandleCheckout)

	resp := postForm(t, app, "/checkout", "slot_id=2&package_id=p2&provider=paypal")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page := readBody(t, resp)

	assert.Contains(t, page, "pay now")
	assert.Contains(t, page, "a@b.com")
	assert.Contains(t, page, "PID1")
	assert.Contains(t, page, "payment note")
	assert.Contains(t, page, "not activated immediately")
}
