package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/validate"
)

type AdminHandler struct {
	Users *repos.UserRepo
}

type deleteUserRequest struct {
	UserID string `json:"userId"`
}

// DeleteUser drops an account with its sessions and cart. Its orders stay.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	var req deleteUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, "admin.users.delete")
	}
	id, valid := validate.ID(req.UserID)
	if !valid {
		applog.Security(c, "validation.fail", map[string]any{"field": "userId"})
		return failTyped(c, fiber.StatusBadRequest, "INVALID_REQUEST", "userId is required")
	}
	if err := h.Users.Delete(c.UserContext(), id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return fail(c, fiber.StatusNotFound, "User not found")
		}
		applog.Error(c, "admin.users.delete.fail", err, map[string]any{"target_user_id": id})
		return fail(c, fiber.StatusInternalServerError, genericMessage)
	}
	applog.Audit(c, "admin.users.delete", map[string]any{"target_user_id": id})
	return ok(c, fiber.Map{"message": "User Deleted"})
}

// PurgeSessions removes expired sessions.
func (h *AdminHandler) PurgeSessions(c *fiber.Ctx) error {
	n, err := h.Users.PurgeSessions(c.UserContext(), time.Now())
	if err != nil {
		applog.Error(c, "admin.sessions.purge.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, genericMessage)
	}
	applog.Audit(c, "admin.sessions.purge", map[string]any{"removed": n})
	return ok(c, fiber.Map{"removed": n})
}
