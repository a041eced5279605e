package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/ManuelReschke/ServerHub/internal/pkg/constants"
	icuser "github.com/ManuelReschke/ServerHub/internal/pkg/usercontext"
)

// AdminChecker answers the is_admin predicate for a user id.
type AdminChecker interface {
	IsAdmin(userID uint) (bool, error)
}

// RequireAuth ensures a logged-in web session; redirects to /login if missing.
func RequireAuth(c *fiber.Ctx) error {
	if !icuser.IsLoggedIn(c) {
		return c.Redirect(constants.LoginRoute, fiber.StatusSeeOther)
	}
	return c.Next()
}

// RequireAPISessionAuth ensures a logged-in session for API routes and returns JSON 401 instead of redirect.
func RequireAPISessionAuth(c *fiber.Ctx) error {
	if !icuser.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}
	return c.Next()
}

// RequireAdmin ensures a logged-in admin for HTML routes. The role is read
// from the database on every request, the session flag is only a display hint.
func RequireAdmin(checker AdminChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uc := icuser.GetUserContext(c)
		if !uc.IsLoggedIn {
			return c.Redirect(constants.LoginRoute, fiber.StatusSeeOther)
		}
		ok, err := checker.IsAdmin(uc.UserID)
		if err != nil {
			log.Error().Err(err).Uint("user_id", uc.UserID).Msg("admin check failed")
			return fiber.ErrInternalServerError
		}
		if !ok {
			return c.Redirect("/", fiber.StatusSeeOther)
		}
		return c.Next()
	}
}

// RequireAPIAdmin is RequireAdmin for JSON routes: 401 without session,
// 403 for non-admins and 500 when the role cannot be read.
func RequireAPIAdmin(checker AdminChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uc := icuser.GetUserContext(c)
		if !uc.IsLoggedIn {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "unauthorized",
				"message": "login required",
			})
		}
		ok, err := checker.IsAdmin(uc.UserID)
		if err != nil {
			log.Error().Err(err).Uint("user_id", uc.UserID).Msg("admin check failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "internal_error",
				"message": "could not verify permissions",
			})
		}
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "forbidden",
				"message": "admin privileges required",
			})
		}
		return c.Next()
	}
}
