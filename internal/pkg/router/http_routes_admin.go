package router

import (
	"github.com/ManuelReschke/ServerHub/app/controllers"
	"github.com/ManuelReschke/ServerHub/app/repository"
	"github.com/ManuelReschke/ServerHub/internal/pkg/constants"
	"github.com/ManuelReschke/ServerHub/internal/pkg/middleware"
	"github.com/gofiber/fiber/v2"
)

func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	users := repository.GetGlobalRepositories().User

	adminGroup := app.Group("/admin", middleware.RequireAdmin(users))
	adminGroup.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect(constants.AdminPaymentsRoute)
	})
	adminGroup.Get("/payments", controllers.HandleAdminPayments)
}
