package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type CartRepo struct{ db sqlx.ExtContext }

func NewCartRepo(db sqlx.ExtContext) *CartRepo { return &CartRepo{db: db} }

func (r *CartRepo) WithTx(tx *sqlx.Tx) *CartRepo { return &CartRepo{db: tx} }

// Get returns the user's cart; an unknown user has an empty cart.
func (r *CartRepo) Get(ctx context.Context, userID string) (domain.Cart, error) {
	var lines []domain.CartLine
	if err := sqlx.SelectContext(ctx, r.db, &lines, r.db.Rebind(`
		SELECT product_id, size, quantity FROM cart_items WHERE user_id = ?
	`), userID); err != nil {
		return nil, err
	}
	return domain.CartFromLines(lines), nil
}

// Add increments a line by qty, creating it if needed.
func (r *CartRepo) Add(ctx context.Context, userID, productID string, size domain.Size, qty int) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO cart_items(user_id, product_id, size, quantity, updated_at)
		VALUES(?,?,?,?,?)
		ON CONFLICT(user_id, product_id, size) DO UPDATE
		SET quantity = cart_items.quantity + excluded.quantity, updated_at = excluded.updated_at
	`), userID, productID, size, qty, time.Now().UnixMilli())
	return err
}

// SetQty overwrites a line's quantity. qty <= 0 removes the line.
func (r *CartRepo) SetQty(ctx context.Context, userID, productID string, size domain.Size, qty int) error {
	if qty <= 0 {
		_, err := r.db.ExecContext(ctx, r.db.Rebind(`
			DELETE FROM cart_items WHERE user_id = ? AND product_id = ? AND size = ?
		`), userID, productID, size)
		return err
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO cart_items(user_id, product_id, size, quantity, updated_at)
		VALUES(?,?,?,?,?)
		ON CONFLICT(user_id, product_id, size) DO UPDATE
		SET quantity = excluded.quantity, updated_at = excluded.updated_at
	`), userID, productID, size, qty, time.Now().UnixMilli())
	return err
}

// Clear empties the user's cart. It fails with ErrUserNotFound when the
// user record is gone, so a checkout against a deleted account rolls back.
func (r *CartRepo) Clear(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE users SET cart_updated_at = ? WHERE id = ?`), time.Now().UnixMilli(), userID)
	if err != nil {
		return err
	}
	if err := mustAffect(res, domain.ErrUserNotFound); err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM cart_items WHERE user_id = ?`), userID)
	return err
}
