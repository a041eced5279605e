package controllers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/ManuelReschke/ServerHub/app/models"
	"github.com/ManuelReschke/ServerHub/app/repository"
	"github.com/ManuelReschke/ServerHub/internal/pkg/constants"
	"github.com/ManuelReschke/ServerHub/internal/pkg/hcaptcha"
	"github.com/ManuelReschke/ServerHub/internal/pkg/mail"
	"github.com/ManuelReschke/ServerHub/internal/pkg/session"
	"github.com/ManuelReschke/ServerHub/internal/pkg/usercontext"
	"github.com/ManuelReschke/ServerHub/internal/pkg/utils"
)

// login failures never tell which part was wrong
const loginFailedMessage = "There is a problem with the login process"

// AuthController handles password login, registration and logout.
type AuthController struct {
	users   repository.UserRepository
	captcha *hcaptcha.Verifier
	mailer  mail.Mailer
}

func NewAuthController(users repository.UserRepository) *AuthController {
	ac := &AuthController{
		users:   users,
		captcha: hcaptcha.NewVerifierFromEnv(),
	}
	if m := mail.NewSMTPMailerFromEnv(); m != nil {
		ac.mailer = m
	}
	return ac
}

func (ac *AuthController) HandleLogin(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Render("auth/login", viewData(c, "Login", nil), layoutMain)
	}

	user, err := ac.users.GetByEmail(c.FormValue("email"))
	if err != nil || !user.IsActive() || !user.CheckPassword(c.FormValue("password")) {
		return flashError(c, loginFailedMessage, constants.LoginRoute)
	}

	if err := startSession(c, user); err != nil {
		log.Error().Err(err).Uint("user_id", user.ID).Msg("failed to start session")
		return flashError(c, loginFailedMessage, constants.LoginRoute)
	}
	if err := ac.users.TouchLastLogin(user.ID, time.Now()); err != nil {
		log.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to update last login")
	}

	return flashSuccess(c, "Welcome back, "+user.Name+"!", "/dashboard")
}

func (ac *AuthController) HandleRegister(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Render("auth/register", viewData(c, "Register", fiber.Map{
			"HCaptchaSiteKey": ac.captcha.SiteKey,
		}), layoutMain)
	}

	if err := ac.captcha.Verify(c.UserContext(), c.FormValue(hcaptcha.FormField)); err != nil {
		log.Warn().Err(err).Str("ip", GetClientIP(c)).Msg("registration captcha failed")
		return flashError(c, "Please solve the captcha.", constants.RegisterRoute)
	}

	email := strings.TrimSpace(c.FormValue("email"))
	if _, err := ac.users.GetByEmail(email); err == nil {
		return flashError(c, "This email address is already registered.", constants.RegisterRoute)
	}

	user, err := models.CreateUser(strings.TrimSpace(c.FormValue("username")), email, c.FormValue("password"))
	if err != nil {
		return flashError(c, "Please check your input: "+err.Error(), constants.RegisterRoute)
	}
	user.AvatarURL = utils.GetGravatarURL(email, 80)
	if err := ac.users.Create(user); err != nil {
		log.Error().Err(err).Msg("failed to create user")
		return flashError(c, "Registration failed. Please try again.", constants.RegisterRoute)
	}

	if ac.mailer != nil {
		subject, body := mail.WelcomeMail(user.Name)
		go func(to string) {
			if err := ac.mailer.Send(to, subject, body); err != nil {
				log.Warn().Err(err).Msg("failed to send welcome mail")
			}
		}(user.Email)
	}

	return flashSuccess(c, "Your account is ready. Please log in.", constants.LoginRoute)
}

func (ac *AuthController) HandleLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return flashError(c, "logged out (no session)", constants.LoginRoute)
	}
	if err := sess.Destroy(); err != nil {
		log.Error().Err(err).Msg("failed to destroy session")
		return flashError(c, "Logout failed. Please try again.", "/")
	}

	usercontext.Set(c, usercontext.Anonymous)
	return flashSuccess(c, "You have been logged out.", constants.LoginRoute)
}

// startSession writes the login state of user into the app session.
func startSession(c *fiber.Ctx, user *models.User) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return err
	}
	// drop any pre-login session id
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(usercontext.AuthKey, true)
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyUsername, user.Name)
	sess.Set(usercontext.KeyIsAdmin, user.IsAdmin())
	return sess.Save()
}
