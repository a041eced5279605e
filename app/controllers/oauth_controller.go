package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/markbates/goth"
	"github.com/rs/zerolog/log"
	gothfiber "github.com/shareed2k/goth_fiber"
	"gorm.io/gorm"

	"github.com/ManuelReschke/ServerHub/app/models"
	"github.com/ManuelReschke/ServerHub/app/repository"
	"github.com/ManuelReschke/ServerHub/internal/pkg/constants"
)

// OAuthController completes Discord logins.
type OAuthController struct {
	users repository.UserRepository
}

func NewOAuthController(users repository.UserRepository) *OAuthController {
	return &OAuthController{users: users}
}

// HandleCallback completes the provider flow and logs the user in
func (oc *OAuthController) HandleCallback(c *fiber.Ctx) error {
	u, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		log.Warn().Err(err).Msg("oauth completion failed")
		return flashError(c, "Discord login failed. Please try again.", constants.LoginRoute)
	}

	user, err := oc.resolveUser(u)
	if err != nil {
		log.Error().Err(err).Str("provider", u.Provider).Msg("failed to resolve oauth user")
		return flashError(c, "Discord login failed. Please try again.", constants.LoginRoute)
	}
	if !user.IsActive() {
		return flashError(c, loginFailedMessage, constants.LoginRoute)
	}

	if err := startSession(c, user); err != nil {
		log.Error().Err(err).Uint("user_id", user.ID).Msg("failed to start session")
		return flashError(c, loginFailedMessage, constants.LoginRoute)
	}
	_ = oc.users.TouchLastLogin(user.ID, time.Now())

	c.Set("HX-Redirect", "/dashboard")
	return c.Redirect("/dashboard", fiber.StatusSeeOther)
}

// resolveUser finds the account linked to the Discord id, links an existing
// account with the same email, or creates a new one.
func (oc *OAuthController) resolveUser(u goth.User) (*models.User, error) {
	user, err := oc.users.GetByDiscordID(u.UserID)
	if err == nil {
		if u.AvatarURL != "" && u.AvatarURL != user.AvatarURL {
			user.AvatarURL = u.AvatarURL
			_ = oc.users.Update(user)
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if u.Email != "" {
		if existing, err := oc.users.GetByEmail(u.Email); err == nil {
			existing.DiscordID = u.UserID
			if existing.AvatarURL == "" {
				existing.AvatarURL = u.AvatarURL
			}
			return existing, oc.users.Update(existing)
		}
	}

	email := u.Email
	if email == "" {
		// unique placeholder, the account can only log in through Discord
		email = fmt.Sprintf("discord_%s@users.serverhub.local", u.UserID)
	}
	name := firstNonEmpty(u.NickName, u.Name)
	if len(name) < 3 {
		name = "Player " + u.UserID
	}
	user, err = models.CreateOAuthUser(name, email, u.UserID, u.AvatarURL)
	if err != nil {
		return nil, err
	}
	if err := oc.users.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
