package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/log"
	"storefront/internal/services"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, "auth.register")
	}
	u, tok, err := h.Auth.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return respondErr(c, "auth.register", err)
	}
	log.Audit(c, "auth.register", map[string]any{"new_user_id": u.ID})
	return ok(c, fiber.Map{"token": tok, "name": u.Name})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req services.Credentials
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, "auth.login")
	}
	u, tok, err := h.Auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondErr(c, "auth.login", err)
	}
	log.Audit(c, "auth.login.success", map[string]any{"login_user_id": u.ID})
	return ok(c, fiber.Map{"token": tok, "name": u.Name})
}

func (h *AuthHandler) Admin(c *fiber.Ctx) error {
	var req services.Credentials
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, "auth.admin")
	}
	tok, err := h.Auth.AdminLogin(c.UserContext(), req)
	if err != nil {
		return respondErr(c, "auth.admin", err)
	}
	log.Audit(c, "auth.admin.success", nil)
	return ok(c, fiber.Map{"token": tok})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if tok := Token(c); tok != "" {
		if err := h.Auth.Logout(c.UserContext(), tok); err != nil {
			log.Error(c, "auth.logout.fail", err, nil)
		}
	}
	log.Audit(c, "auth.logout", nil)
	return ok(c, nil)
}
