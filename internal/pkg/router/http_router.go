package router

import (
	"github.com/ManuelReschke/ServerHub/app/controllers"
	"github.com/ManuelReschke/ServerHub/internal/pkg/middleware"
	"github.com/ManuelReschke/ServerHub/internal/pkg/oauth"
	"github.com/ManuelReschke/ServerHub/internal/pkg/session"

	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// init oauth providers
	oauth.Setup()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	controllers.InitializeControllers()

	h.registerPublicRoutes(app)
	h.registerAdminRoutes(app)
	h.registerCSRFProtectedRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
