package router

import (
	"strings"
	"time"

	"github.com/ManuelReschke/ServerHub/app/controllers"
	"github.com/ManuelReschke/ServerHub/app/repository"
	"github.com/ManuelReschke/ServerHub/internal/pkg/env"
	"github.com/ManuelReschke/ServerHub/internal/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
)

func (h HttpRouter) registerCSRFProtectedRoutes(app *fiber.App) {
	csrfConf := csrf.Config{
		KeyLookup:      "form:_csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
	}

	group := app.Group("", cors.New(), csrf.New(csrfConf))
	group.Get("/", controllers.HandleStart)
	group.Post("/servers/:id/vote", controllers.HandleServerVote)

	group.Get("/login", controllers.HandleAuthLogin)
	group.Post("/login", controllers.HandleAuthLogin)
	group.Get("/register", controllers.HandleAuthRegister)
	group.Post("/register", controllers.HandleAuthRegister)

	// Slot catalogue and checkout
	group.Get("/advertise", controllers.HandleAdvertise)
	group.Post("/checkout", controllers.HandleCheckout)

	// Dashboard
	group.Get("/dashboard", middleware.RequireAuth, controllers.HandleDashboard)
	group.Get("/dashboard/servers/new", middleware.RequireAuth, controllers.HandleDashboardServerNew)
	group.Post("/dashboard/servers/new", middleware.RequireAuth, controllers.HandleDashboardServerNew)
	group.Get("/dashboard/banners/new", middleware.RequireAuth, controllers.HandleDashboardBannerNew)
	group.Post("/dashboard/banners/new", middleware.RequireAuth, controllers.HandleDashboardBannerNew)
	group.Post("/dashboard/servers/delete/:id", middleware.RequireAuth, controllers.HandleDashboardServerDelete)

	// Admin forms
	users := repository.GetGlobalRepositories().User
	group.Post("/admin/payments/:provider/toggle", middleware.RequireAdmin(users), controllers.HandleAdminPaymentToggle)
}
