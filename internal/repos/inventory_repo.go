package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type InventoryRepo struct{ db sqlx.ExtContext }

func NewInventoryRepo(db sqlx.ExtContext) *InventoryRepo { return &InventoryRepo{db: db} }

func (r *InventoryRepo) WithTx(tx *sqlx.Tx) *InventoryRepo { return &InventoryRepo{db: tx} }

// Row used by the admin stock listing
type InventoryRow struct {
	ProductID string      `db:"product_id" json:"productId"`
	Name      string      `db:"name" json:"name"`
	Size      domain.Size `db:"size" json:"size"`
	Stock     int         `db:"stock" json:"stock"`
	Sold      int         `db:"sold" json:"sold"`
}

// ListAll returns every ledger row with the product name.
func (r *InventoryRepo) ListAll(ctx context.Context) ([]InventoryRow, error) {
	var rows []InventoryRow
	err := sqlx.SelectContext(ctx, r.db, &rows, `
		SELECT s.product_id, p.name, s.size, s.stock, s.sold
		FROM product_sizes s
		JOIN products p ON p.id = s.product_id
		ORDER BY p.name, s.position, s.size
	`)
	return rows, err
}

// SizeStock returns the ledger for one product in display order.
func (r *InventoryRepo) SizeStock(ctx context.Context, productID string) ([]domain.SizeStock, error) {
	var out []domain.SizeStock
	err := sqlx.SelectContext(ctx, r.db, &out, r.db.Rebind(`
		SELECT size, stock, sold FROM product_sizes WHERE product_id = ? ORDER BY position, size
	`), productID)
	return out, err
}

// ErrLedgerChanged means the size row was replaced between the guarded
// update and the follow-up read twice in a row.
var ErrLedgerChanged = errors.New("size stock replaced during sale")

// DecrementAndSell moves qty units of one size from stock to sold, but only
// if stock covers it. The check and the write are one statement, so two
// concurrent callers can never drive stock below zero.
//
// When the update matches nothing but a re-read shows enough stock, an admin
// replaced the ledger in between; the update runs once more so the caller
// never gets a shortage that reports Available >= Required.
func (r *InventoryRepo) DecrementAndSell(ctx context.Context, productID string, size domain.Size, qty int) (domain.SizeStock, error) {
	if qty <= 0 {
		return domain.SizeStock{}, fmt.Errorf("decrement %s/%s: quantity must be positive, got %d", productID, size, qty)
	}
	for attempt := 0; attempt < 2; attempt++ {
		var after domain.SizeStock
		err := sqlx.GetContext(ctx, r.db, &after, r.db.Rebind(`
			UPDATE product_sizes
			SET stock = stock - ?, sold = sold + ?
			WHERE product_id = ? AND size = ? AND stock >= ?
			RETURNING size, stock, sold
		`), qty, qty, productID, size, qty)
		if err == nil {
			return after, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return domain.SizeStock{}, err
		}
		stock, err := r.stockOf(ctx, productID, size)
		if err != nil {
			return domain.SizeStock{}, err
		}
		if stock < qty {
			return domain.SizeStock{}, &domain.InsufficientStockError{
				ProductID: productID, Size: size, Required: qty, Available: stock,
			}
		}
	}
	return domain.SizeStock{}, fmt.Errorf("decrement %s/%s: %w", productID, size, ErrLedgerChanged)
}

// stockOf reads one size's stock, telling a missing product from a missing size.
func (r *InventoryRepo) stockOf(ctx context.Context, productID string, size domain.Size) (int, error) {
	var stock int
	err := sqlx.GetContext(ctx, r.db, &stock, r.db.Rebind(`
		SELECT stock FROM product_sizes WHERE product_id = ? AND size = ?
	`), productID, size)
	if !errors.Is(err, sql.ErrNoRows) {
		return stock, err
	}
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, r.db.Rebind(`SELECT COUNT(*) FROM products WHERE id = ?`), productID); err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, domain.ErrProductNotFound
	}
	return 0, domain.ErrSizeNotFound
}

// ReplaceSizeStock swaps a product's whole ledger for entries, keeping
// their order as the display order.
func (r *InventoryRepo) ReplaceSizeStock(ctx context.Context, productID string, entries []domain.SizeStock) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM product_sizes WHERE product_id = ?`), productID); err != nil {
		return err
	}
	for pos, e := range entries {
		if _, err := r.db.ExecContext(ctx, r.db.Rebind(`
			INSERT INTO product_sizes(product_id, size, position, stock, sold) VALUES(?,?,?,?,?)
		`), productID, e.Size, pos, e.Stock, e.Sold); err != nil {
			return fmt.Errorf("size %s: %w", e.Size, err)
		}
	}
	return nil
}
