package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/ServerHub/internal/pkg/usercontext"
)

type stubChecker struct {
	admin bool
	err   error
	calls int
}

func (s *stubChecker) IsAdmin(uint) (bool, error) {
	s.calls++
	return s.admin, s.err
}

func newApp(uc *usercontext.UserContext, handlers ...fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if uc != nil {
			usercontext.Set(c, *uc)
		}
		return c.Next()
	})
	handlers = append(handlers, func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/", handlers...)
	return app
}

func TestRequireAuth(t *testing.T) {
	app := newApp(nil, RequireAuth)
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	app = newApp(&usercontext.UserContext{UserID: 1, IsLoggedIn: true}, RequireAuth)
	resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireAPIAdmin(t *testing.T) {
	loggedIn := &usercontext.UserContext{UserID: 5, IsLoggedIn: true}

	tests := []struct {
		name    string
		uc      *usercontext.UserContext
		checker *stubChecker
		want    int
		calls   int
	}{
		{name: "anonymous", checker: &stubChecker{admin: true}, want: fiber.StatusUnauthorized},
		{name: "not admin", uc: loggedIn, checker: &stubChecker{}, want: fiber.StatusForbidden, calls: 1},
		{name: "lookup error", uc: loggedIn, checker: &stubChecker{err: errors.New("db down")}, want: fiber.StatusInternalServerError, calls: 1},
		{name: "admin", uc: loggedIn, checker: &stubChecker{admin: true}, want: fiber.StatusOK, calls: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newApp(tc.uc, RequireAPIAdmin(tc.checker))
			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
			assert.Equal(t, tc.calls, tc.checker.calls)
		})
	}
}

func TestRequireAdminIgnoresSessionFlag(t *testing.T) {
	// the session claims admin but the database disagrees
	uc := &usercontext.UserContext{UserID: 5, IsLoggedIn: true, IsAdmin: true}
	app := newApp(uc, RequireAdmin(&stubChecker{admin: false}))

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestRequireAPISessionAuth(t *testing.T) {
	app := newApp(nil, RequireAPISessionAuth)
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
