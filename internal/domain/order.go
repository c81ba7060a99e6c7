package domain

import "time"

type PaymentMethod string

// PaymentCOD (cash on delivery) is the only live payment method.
const PaymentCOD PaymentMethod = "COD"

type Address struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zipcode   string `json:"zipcode"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

func (a Address) IsZero() bool { return a == Address{} }

// OrderItem is the purchase-time copy of one cart line.
type OrderItem struct {
	ProductID string  `db:"product_id" json:"productId"`
	Name      string  `db:"name" json:"name"`
	Size      Size    `db:"size" json:"size"`
	Quantity  int     `db:"quantity" json:"quantity"`
	Price     float64 `db:"price" json:"price"`
}

func (it OrderItem) Subtotal() float64 { return it.Price * float64(it.Quantity) }

type Order struct {
	ID            string        `db:"id" json:"id"`
	UserID        string        `db:"user_id" json:"userId"`
	Items         []OrderItem   `db:"-" json:"items"`
	Amount        float64       `db:"amount" json:"amount"`
	AddressJSON   string        `db:"address_json" json:"-"`
	Address       Address       `db:"-" json:"address"`
	PaymentMethod PaymentMethod `db:"payment_method" json:"paymentMethod"`
	Payment       bool          `db:"payment" json:"payment"`
	Status        OrderStatus   `db:"status" json:"status"`
	CreatedAt     int64         `db:"created_at" json:"date"`
}

// ItemsTotal is the sum of line subtotals, excluding delivery.
func (o Order) ItemsTotal() float64 {
	total := 0.0
	for _, it := range o.Items {
		total += it.Subtotal()
	}
	return total
}

func (o Order) Placed() time.Time { return time.UnixMilli(o.CreatedAt) }
