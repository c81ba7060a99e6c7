package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/events"
	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/validate"
)

type LineRequest struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// PlaceOrderRequest is what a checkout submits. Amount and Address are
// pointers so a missing field can be told apart from a zero one.
type PlaceOrderRequest struct {
	UserID  string          `json:"userId"`
	Items   []LineRequest   `json:"items"`
	Amount  *float64        `json:"amount"`
	Address *domain.Address `json:"address"`
}

func (r PlaceOrderRequest) validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return invalid("userId", "is required")
	}
	if len(r.Items) == 0 {
		return invalid("items", "must not be empty")
	}
	for i, it := range r.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			return invalid(fmt.Sprintf("items[%d].productId", i), "is required")
		}
		if strings.TrimSpace(it.Size) == "" {
			return invalid(fmt.Sprintf("items[%d].size", i), "is required")
		}
		if !validate.Quantity(it.Quantity) {
			return invalid(fmt.Sprintf("items[%d].quantity", i), "must be positive")
		}
	}
	if r.Amount == nil || !validate.Price(*r.Amount) {
		return invalid("amount", "is required")
	}
	if r.Address == nil || r.Address.IsZero() {
		return invalid("address", "is required")
	}
	return nil
}

type OrderService struct {
	DB       *sqlx.DB
	Products *repos.ProductRepo
	Inv      *repos.InventoryRepo
	Orders   *repos.OrderRepo
	Carts    *repos.CartRepo
	Cache    cache.ProductCache
	Events   events.Publisher

	DeliveryCharge float64
	Now            func() time.Time
}

func NewOrderService(db *sqlx.DB, pc cache.ProductCache, pub events.Publisher, deliveryCharge float64) *OrderService {
	return &OrderService{
		DB:             db,
		Products:       repos.NewProductRepo(db),
		Inv:            repos.NewInventoryRepo(db),
		Orders:         repos.NewOrderRepo(db),
		Carts:          repos.NewCartRepo(db),
		Cache:          pc,
		Events:         pub,
		DeliveryCharge: deliveryCharge,
		Now:            time.Now,
	}
}

// Place records an order and takes its stock in one transaction: create the
// order, then per line load product, find size, check and decrement, then
// empty the cart and commit. Any failure rolls everything back.
func (s *OrderService) Place(ctx context.Context, req PlaceOrderRequest) (domain.Order, error) {
	if err := req.validate(); err != nil {
		return domain.Order{}, err
	}

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin: %w", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
			applog.Error(nil, "order.abort.fail", rerr, map[string]any{"user_id": req.UserID})
		}
	}()

	products := s.Products.WithTx(tx)
	inv := s.Inv.WithTx(tx)
	orders := s.Orders.WithTx(tx)

	o := domain.Order{
		ID:            uuid.NewString(),
		UserID:        strings.TrimSpace(req.UserID),
		Items:         make([]domain.OrderItem, 0, len(req.Items)),
		Amount:        *req.Amount,
		Address:       *req.Address,
		PaymentMethod: domain.PaymentCOD,
		Payment:       false,
		Status:        domain.StatusPlaced,
		CreatedAt:     s.now().UnixMilli(),
	}
	if err := orders.Create(ctx, &o); err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	for i, line := range req.Items {
		it, err := sellLine(ctx, products, inv, line)
		if err != nil {
			return domain.Order{}, err
		}
		if err := orders.InsertItem(ctx, o.ID, i, it); err != nil {
			return domain.Order{}, fmt.Errorf("insert item %d: %w", i, err)
		}
		o.Items = append(o.Items, it)
	}

	if err := s.Carts.WithTx(tx).Clear(ctx, o.UserID); err != nil {
		return domain.Order{}, fmt.Errorf("clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Order{}, fmt.Errorf("commit: %w", err)
	}
	committed = true

	s.afterCommit(context.WithoutCancel(ctx), o)
	return o, nil
}

// sellLine takes one line's stock and returns the purchase-time copy.
func sellLine(ctx context.Context, products *repos.ProductRepo, inv *repos.InventoryRepo, line LineRequest) (domain.OrderItem, error) {
	p, err := products.Get(ctx, strings.TrimSpace(line.ProductID))
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return domain.OrderItem{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, line.ProductID)
		}
		return domain.OrderItem{}, fmt.Errorf("load product %s: %w", line.ProductID, err)
	}
	size := domain.Size(strings.TrimSpace(line.Size))
	entry, ok := p.Entry(size)
	if !ok {
		return domain.OrderItem{}, fmt.Errorf("%w: %s size %s", domain.ErrSizeNotFound, p.ID, size)
	}
	if entry.Stock < line.Quantity {
		return domain.OrderItem{}, &domain.InsufficientStockError{
			ProductID: p.ID, ProductName: p.Name, Size: size,
			Required: line.Quantity, Available: entry.Stock,
		}
	}
	if _, err := inv.DecrementAndSell(ctx, p.ID, size, line.Quantity); err != nil {
		var ise *domain.InsufficientStockError
		if errors.As(err, &ise) {
			ise.ProductName = p.Name
			return domain.OrderItem{}, ise
		}
		return domain.OrderItem{}, fmt.Errorf("decrement %s/%s: %w", p.ID, size, err)
	}
	return domain.OrderItem{
		ProductID: p.ID,
		Name:      p.Name,
		Size:      size,
		Quantity:  line.Quantity,
		Price:     p.Price,
	}, nil
}

// afterCommit runs the side effects that must not undo a committed order.
func (s *OrderService) afterCommit(ctx context.Context, o domain.Order) {
	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx); err != nil {
			applog.Error(nil, "cache.invalidate.fail", err, map[string]any{"order_id": o.ID})
		}
	}
	if s.Events != nil {
		if err := s.Events.PublishOrderPlaced(ctx, o); err != nil {
			applog.Error(nil, "order.event.fail", err, map[string]any{"order_id": o.ID})
		}
	}
	expected := o.ItemsTotal() + s.DeliveryCharge
	if math.Abs(expected-o.Amount) > 0.005 {
		applog.Audit(nil, "order.amount.mismatch", map[string]any{
			"order_id": o.ID, "user_id": o.UserID, "client_amount": o.Amount, "server_amount": expected,
		})
	}
}

func (s *OrderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.Orders.ListAll(ctx)
}

func (s *OrderService) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, invalid("userId", "is required")
	}
	return s.Orders.ListByUser(ctx, userID)
}

// UpdateStatus applies an admin status change if the transition table
// allows it. Setting the current status again is a no-op.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string) (domain.Order, error) {
	next, ok := validate.Status(status)
	if !ok {
		return domain.Order{}, invalid("status", fmt.Sprintf("unknown value %q", status))
	}
	o, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if !o.Status.CanTransition(next) {
		return domain.Order{}, fmt.Errorf("%w: %s -> %s", domain.ErrIllegalStatus, o.Status, next)
	}
	if o.Status == next {
		return o, nil
	}
	if err := s.Orders.UpdateStatus(ctx, orderID, o.Status, next); err != nil {
		return domain.Order{}, err
	}
	o.Status = next
	return o, nil
}

func (s *OrderService) UpdatePayment(ctx context.Context, orderID string, paid bool) error {
	return s.Orders.UpdatePayment(ctx, orderID, paid)
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
