package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
)

// Token reads the session token from "Authorization: Bearer" or the
// plain "token" header.
func Token(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return strings.TrimSpace(c.Get("token"))
}

// Authenticate attaches the session (and user, if any) to Locals when a
// valid token is present. It never rejects.
func Authenticate(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tok := Token(c); tok != "" {
			sess, u, err := auth.Authenticate(c.UserContext(), tok)
			if err == nil {
				c.Locals("session", sess)
				if u != nil {
					c.Locals("user", u)
				}
			}
		}
		return c.Next()
	}
}

func sessionOf(c *fiber.Ctx) (domain.Session, bool) {
	s, ok := c.Locals("session").(domain.Session)
	return s, ok
}

func userOf(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

// RequireUser enforces a signed-in customer.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userOf(c) == nil {
			applog.Security(c, "access.denied.user", nil)
			return fail(c, fiber.StatusUnauthorized, "Not Authorized Login Again")
		}
		return c.Next()
	}
}

// RequireAdmin enforces an admin session.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, ok := sessionOf(c)
		if !ok {
			applog.Security(c, "access.denied.admin", map[string]any{"reason": "no_session"})
			return fail(c, fiber.StatusUnauthorized, "Not Authorized Login Again")
		}
		if s.Role != domain.RoleAdmin {
			applog.Security(c, "access.denied.admin", map[string]any{"reason": "role"})
			return fail(c, fiber.StatusForbidden, "Access denied")
		}
		return c.Next()
	}
}
