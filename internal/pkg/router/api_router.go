package router

import (
	"github.com/ManuelReschke/ServerHub/app/controllers"
	"github.com/ManuelReschke/ServerHub/app/repository"
	"github.com/ManuelReschke/ServerHub/internal/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1")
	v1.Post("/checkout", middleware.RequireAPISessionAuth, controllers.HandleAPICheckout)

	users := repository.GetGlobalRepositories().User
	admin := api.Group("/admin", middleware.RequireAPIAdmin(users))
	admin.Post("/paypal/validate", controllers.HandleAdminValidatePayPal)
	admin.Post("/stripe/validate", controllers.HandleAdminValidateStripe)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
