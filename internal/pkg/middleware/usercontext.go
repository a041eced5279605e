package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/ManuelReschke/ServerHub/internal/pkg/session"
	"github.com/ManuelReschke/ServerHub/internal/pkg/usercontext"
)

// UserContextMiddleware sets up the complete user context for every request
func UserContextMiddleware(c *fiber.Ctx) error {
	// Goth keeps its own session store on /auth/*; touching ours there
	// collides with its cookie handling.
	if strings.HasPrefix(c.Path(), "/auth/") {
		return c.Next()
	}

	store := session.GetSessionStore()
	if store == nil {
		usercontext.Set(c, usercontext.Anonymous)
		return c.Next()
	}

	sess, err := store.Get(c)
	if err != nil {
		log.Warn().Err(err).Msg("could not load session")
		usercontext.Set(c, usercontext.Anonymous)
		return c.Next()
	}

	userID, ok := sess.Get(usercontext.KeyUserID).(uint)
	if !ok || userID == 0 {
		usercontext.Set(c, usercontext.Anonymous)
		return c.Next()
	}

	username, _ := sess.Get(usercontext.KeyUsername).(string)
	isAdmin, _ := sess.Get(usercontext.KeyIsAdmin).(bool)

	usercontext.Set(c, usercontext.UserContext{
		UserID:     userID,
		Username:   username,
		IsLoggedIn: true,
		IsAdmin:    isAdmin,
	})
	return c.Next()
}
