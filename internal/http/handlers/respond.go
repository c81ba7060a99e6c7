package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
)

const genericMessage = "Something went wrong. Please try again."

func ok(c *fiber.Ctx, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["success"] = true
	return c.JSON(data)
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": msg})
}

func failTyped(c *fiber.Ctx, status int, typ, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": msg, "type": typ})
}

// badBody answers a request whose body could not be decoded.
func badBody(c *fiber.Ctx, action string) error {
	applog.Security(c, "validation.fail", map[string]any{"action": action, "reason": "body"})
	return failTyped(c, fiber.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
}

// respondErr maps service errors to the JSON envelope. Anything
// unrecognised is logged and answered generically.
func respondErr(c *fiber.Ctx, action string, err error) error {
	var ve *services.ValidationError
	var ise *domain.InsufficientStockError
	switch {
	case errors.As(err, &ve):
		applog.Security(c, "validation.fail", map[string]any{"action": action, "field": ve.Field})
		return failTyped(c, fiber.StatusBadRequest, "INVALID_REQUEST", ve.Error())
	case errors.As(err, &ise):
		applog.Info(c, action+".short", map[string]any{"product_id": ise.ProductID, "size": ise.Size, "required": ise.Required, "available": ise.Available})
		return failTyped(c, fiber.StatusBadRequest, "INSUFFICIENT_STOCK", ise.Error())
	case errors.Is(err, domain.ErrProductNotFound):
		return fail(c, fiber.StatusNotFound, "Product not found")
	case errors.Is(err, domain.ErrSizeNotFound):
		return fail(c, fiber.StatusBadRequest, "Size not offered for this product")
	case errors.Is(err, domain.ErrOrderNotFound):
		return fail(c, fiber.StatusNotFound, "Order not found")
	case errors.Is(err, domain.ErrIllegalStatus):
		return failTyped(c, fiber.StatusBadRequest, "INVALID_STATUS_TRANSITION", err.Error())
	case errors.Is(err, domain.ErrStatusConflict):
		return fail(c, fiber.StatusConflict, "Order was updated by someone else, reload and retry")
	case errors.Is(err, domain.ErrEmailTaken):
		return fail(c, fiber.StatusConflict, "User already exists")
	case errors.Is(err, services.ErrBadCreds):
		applog.Security(c, action+".fail", map[string]any{"reason": "bad_credentials"})
		return fail(c, fiber.StatusUnauthorized, "Invalid credentials")
	}
	applog.Error(c, action+".fail", err, nil)
	return fail(c, fiber.StatusInternalServerError, genericMessage)
}

// ErrorHandler is the app-wide fallback: JSON under /api, the notfound
// page elsewhere. Internal details never reach the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := genericMessage
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		if code < fiber.StatusInternalServerError {
			msg = utils.StatusMessage(code)
		}
	}
	if code >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
	}
	if strings.HasPrefix(c.Path(), "/api/") {
		return fail(c, code, msg)
	}
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}
