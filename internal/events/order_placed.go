package events

import (
	"time"

	"storefront/internal/domain"
)

type OrderPlaced struct {
	EventType string      `json:"eventType"`
	OrderID   string      `json:"orderId"`
	UserID    string      `json:"userId"`
	Items     []OrderItem `json:"items"`
	Amount    float64     `json:"amount"`
	Timestamp time.Time   `json:"timestamp"`
}

type OrderItem struct {
	ProductID string  `json:"productId"`
	Size      string  `json:"size"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

func NewOrderPlaced(o domain.Order) OrderPlaced {
	items := make([]OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItem{
			ProductID: it.ProductID,
			Size:      it.Size.String(),
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	return OrderPlaced{
		EventType: "OrderPlaced",
		OrderID:   o.ID,
		UserID:    o.UserID,
		Items:     items,
		Amount:    o.Amount,
		Timestamp: o.Placed().UTC(),
	}
}
