package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/services"
)

type CartHandler struct {
	Cart *services.CartService
}

type cartRequest struct {
	ItemID   string `json:"itemId"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	var req cartRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, "cart.add")
	}
	if err := h.Cart.Add(c.UserContext(), userOf(c).ID, req.ItemID, req.Size); err != nil {
		return respondErr(c, "cart.add", err)
	}
	return ok(c, fiber.Map{"message": "Added To Cart"})
}

func (h *CartHandler) Update(c *fiber.Ctx) error {
	var req cartRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, "cart.update")
	}
	if err := h.Cart.Update(c.UserContext(), userOf(c).ID, req.ItemID, req.Size, req.Quantity); err != nil {
		return respondErr(c, "cart.update", err)
	}
	return ok(c, fiber.Map{"message": "Cart Updated"})
}

func (h *CartHandler) Get(c *fiber.Ctx) error {
	cart, err := h.Cart.Get(c.UserContext(), userOf(c).ID)
	if err != nil {
		return respondErr(c, "cart.get", err)
	}
	return ok(c, fiber.Map{"cartData": cart})
}
