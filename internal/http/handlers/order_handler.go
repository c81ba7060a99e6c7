package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
)

type OrderHandler struct {
	Order *services.OrderService
}

// Place runs checkout for the signed-in customer. The user id always comes
// from the session, whatever the body says.
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var req services.PlaceOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, "order.place")
	}
	u := userOf(c)
	req.UserID = u.ID

	o, err := h.Order.Place(c.UserContext(), req)
	if err != nil {
		var ve *services.ValidationError
		var ise *domain.InsufficientStockError
		if errors.As(err, &ve) || errors.As(err, &ise) {
			return respondErr(c, "order.place", err)
		}
		// product or size gone, or the store failed: nothing was written
		applog.Error(c, "order.place.fail", err, map[string]any{"lines": len(req.Items)})
		return fail(c, fiber.StatusInternalServerError, genericMessage)
	}
	applog.Audit(c, "order.place", map[string]any{"order_id": o.ID, "lines": len(o.Items), "amount": o.Amount})
	return ok(c, fiber.Map{"message": "Order Placed", "orderId": o.ID})
}

func (h *OrderHandler) All(c *fiber.Ctx) error {
	orders, err := h.Order.ListAll(c.UserContext())
	if err != nil {
		return respondErr(c, "order.list", err)
	}
	return ok(c, fiber.Map{"orders": orders})
}

// UserOrders lists the caller's own orders.
func (h *OrderHandler) UserOrders(c *fiber.Ctx) error {
	orders, err := h.Order.ListByUser(c.UserContext(), userOf(c).ID)
	if err != nil {
		return respondErr(c, "order.user", err)
	}
	return ok(c, fiber.Map{"orders": orders})
}

type statusRequest struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

func (h *OrderHandler) Status(c *fiber.Ctx) error {
	var req statusRequest
	if err := c.BodyParser(&req); err != nil || req.OrderID == "" {
		return failTyped(c, fiber.StatusBadRequest, "INVALID_REQUEST", "orderId and status are required")
	}
	o, err := h.Order.UpdateStatus(c.UserContext(), req.OrderID, req.Status)
	if err != nil {
		return respondErr(c, "order.status", err)
	}
	applog.Audit(c, "order.status", map[string]any{"order_id": o.ID, "status": o.Status})
	return ok(c, fiber.Map{"message": "Status Updated"})
}

type paymentRequest struct {
	OrderID string `json:"orderId"`
	Payment bool   `json:"payment"`
}

func (h *OrderHandler) Payment(c *fiber.Ctx) error {
	var req paymentRequest
	if err := c.BodyParser(&req); err != nil || req.OrderID == "" {
		return failTyped(c, fiber.StatusBadRequest, "INVALID_REQUEST", "orderId is required")
	}
	if err := h.Order.UpdatePayment(c.UserContext(), req.OrderID, req.Payment); err != nil {
		return respondErr(c, "order.payment", err)
	}
	applog.Audit(c, "order.payment", map[string]any{"order_id": req.OrderID, "payment": req.Payment})
	return ok(c, fiber.Map{"message": "Payment Updated"})
}
