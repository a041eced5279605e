package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/ManuelReschke/ServerHub/internal/pkg/usercontext"
)

const layoutMain = "layouts/main"

// TemplateFuncs are the helpers the view templates call.
var TemplateFuncs = map[string]interface{}{
	"rank": func(i int) int { return i + 1 },
}

// viewData returns the values every page template expects, merged with extra.
func viewData(c *fiber.Ctx, title string, extra fiber.Map) fiber.Map {
	data := fiber.Map{
		"Title": title,
		"User":  usercontext.GetUserContext(c),
		"CSRF":  csrfToken(c),
		"Flash": flash.Get(c),
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

func csrfToken(c *fiber.Ctx) string {
	if token, ok := c.Locals("csrf").(string); ok {
		return token
	}
	return ""
}

func flashError(c *fiber.Ctx, message, redirect string) error {
	return flash.WithError(c, fiber.Map{"type": "error", "message": message}).Redirect(redirect)
}

func flashSuccess(c *fiber.Ctx, message, redirect string) error {
	return flash.WithSuccess(c, fiber.Map{"type": "success", "message": message}).Redirect(redirect)
}

// GetClientIP returns the originating client address, honouring Cloudflare
// and the first X-Forwarded-For hop before falling back to the peer address.
func GetClientIP(c *fiber.Ctx) string {
	if cfIP := strings.TrimSpace(c.Get("CF-Connecting-IP")); cfIP != "" {
		return cfIP
	}
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	return strings.TrimPrefix(c.IP(), "::ffff:")
}
