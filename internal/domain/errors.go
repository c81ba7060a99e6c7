package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrSizeNotFound    = errors.New("size not offered for product")
	ErrOrderNotFound   = errors.New("order not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrUnknownStatus   = errors.New("unknown order status")
	ErrIllegalStatus   = errors.New("illegal order status transition")
	ErrStatusConflict  = errors.New("order status changed concurrently")
	ErrEmailTaken      = errors.New("email already registered")
	ErrSessionNotFound = errors.New("session not found or expired")
)

// InsufficientStockError reports a line that asks for more than is on hand.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Size        Size
	Required    int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("Insufficient stock for product: %s (size %s). Required: %d, Available: %d",
		name, e.Size, e.Required, e.Available)
}
