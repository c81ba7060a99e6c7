package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

// Check answers per-size availability for ?productId=.
func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.Query("productId"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return failTyped(c, fiber.StatusBadRequest, "INVALID_REQUEST", "missing productId")
	}
	avail, err := h.Inv.CheckAvailability(c.UserContext(), productID)
	if err != nil {
		return respondErr(c, "inventory.check", err)
	}
	return c.JSON(fiber.Map{"success": true, "productId": productID, "sizes": avail})
}

// Ledger is the admin stock table.
func (h *InventoryHandler) Ledger(c *fiber.Ctx) error {
	rows, err := h.Inv.Ledger(c.UserContext())
	if err != nil {
		return respondErr(c, "inventory.ledger", err)
	}
	log.Audit(c, "admin.inventory.view", map[string]any{"rows": len(rows)})
	return ok(c, fiber.Map{"inventory": rows})
}
