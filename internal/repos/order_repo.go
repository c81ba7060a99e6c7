package repos

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type OrderRepo struct{ db sqlx.ExtContext }

func NewOrderRepo(db sqlx.ExtContext) *OrderRepo { return &OrderRepo{db: db} }

func (r *OrderRepo) WithTx(tx *sqlx.Tx) *OrderRepo { return &OrderRepo{db: tx} }

const orderCols = `id, user_id, amount, address_json, payment_method, payment, status, created_at`

// Create inserts a new order header. Items are written with InsertItem.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	b, err := json.Marshal(o.Address)
	if err != nil {
		return err
	}
	o.AddressJSON = string(b)
	_, err = r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO orders(`+orderCols+`)
		VALUES(?,?,?,?,?,?,?,?)
	`), o.ID, o.UserID, o.Amount, o.AddressJSON, o.PaymentMethod, o.Payment, o.Status, o.CreatedAt)
	return err
}

// InsertItem inserts a single line item at position pos.
func (r *OrderRepo) InsertItem(ctx context.Context, orderID string, pos int, it domain.OrderItem) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO order_items(order_id, position, product_id, name, size, quantity, price)
		VALUES(?,?,?,?,?,?,?)
	`), orderID, pos, it.ProductID, it.Name, it.Size, it.Quantity, it.Price)
	return err
}

func (r *OrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	var o domain.Order
	err := sqlx.GetContext(ctx, r.db, &o, r.db.Rebind(`SELECT `+orderCols+` FROM orders WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}
	out := []domain.Order{o}
	if err := r.attachItems(ctx, out); err != nil {
		return domain.Order{}, err
	}
	return out[0], nil
}

// ListAll returns every order, newest first (admin).
func (r *OrderRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := sqlx.SelectContext(ctx, r.db, &orders, `SELECT `+orderCols+` FROM orders ORDER BY created_at DESC, id`); err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, r.attachItems(ctx, orders)
}

// ListByUser returns one customer's orders, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	var orders []domain.Order
	if err := sqlx.SelectContext(ctx, r.db, &orders, r.db.Rebind(`
		SELECT `+orderCols+` FROM orders WHERE user_id = ? ORDER BY created_at DESC, id
	`), userID); err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, r.attachItems(ctx, orders)
}

// UpdateStatus moves an order from one status to another. It only writes
// when the stored status still equals from.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE orders SET status = ? WHERE id = ? AND status = ?`), to, id, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return domain.ErrStatusConflict
}

func (r *OrderRepo) UpdatePayment(ctx context.Context, id string, paid bool) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE orders SET payment = ? WHERE id = ?`), paid, id)
	if err != nil {
		return err
	}
	return mustAffect(res, domain.ErrOrderNotFound)
}

// attachItems loads line items for orders in one query and decodes addresses.
func (r *OrderRepo) attachItems(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	q, args, err := sqlx.In(`
		SELECT order_id, product_id, name, size, quantity, price
		FROM order_items
		WHERE order_id IN (?)
		ORDER BY order_id, position
	`, ids)
	if err != nil {
		return err
	}
	var rows []struct {
		OrderID string `db:"order_id"`
		domain.OrderItem
	}
	if err := sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(q), args...); err != nil {
		return err
	}
	byOrder := map[string][]domain.OrderItem{}
	for _, row := range rows {
		byOrder[row.OrderID] = append(byOrder[row.OrderID], row.OrderItem)
	}
	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []domain.OrderItem{}
		}
		if orders[i].AddressJSON != "" {
			if err := json.Unmarshal([]byte(orders[i].AddressJSON), &orders[i].Address); err != nil {
				return fmt.Errorf("order %s: decode address: %w", orders[i].ID, err)
			}
		}
	}
	return nil
}
