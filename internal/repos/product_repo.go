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

type ProductRepo struct{ db sqlx.ExtContext }

func NewProductRepo(db sqlx.ExtContext) *ProductRepo { return &ProductRepo{db: db} }

// WithTx returns a repo bound to tx.
func (r *ProductRepo) WithTx(tx *sqlx.Tx) *ProductRepo { return &ProductRepo{db: tx} }

const productCols = `id, name, description, price, category, sub_category, bestseller, images_json, created_at`

// Get loads one product with its size ledger.
func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := sqlx.GetContext(ctx, r.db, &p, r.db.Rebind(`SELECT `+productCols+` FROM products WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	if err := sqlx.SelectContext(ctx, r.db, &p.SizeStock, r.db.Rebind(`
		SELECT size, stock, sold FROM product_sizes WHERE product_id = ? ORDER BY position, size
	`), id); err != nil {
		return domain.Product{}, err
	}
	if p.SizeStock == nil {
		p.SizeStock = []domain.SizeStock{}
	}
	if err := decodeImages(&p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// List returns the whole catalog, newest first.
func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	var ps []domain.Product
	if err := sqlx.SelectContext(ctx, r.db, &ps, `SELECT `+productCols+` FROM products ORDER BY created_at DESC, id`); err != nil {
		return nil, err
	}
	var rows []struct {
		ProductID string `db:"product_id"`
		domain.SizeStock
	}
	if err := sqlx.SelectContext(ctx, r.db, &rows, `
		SELECT product_id, size, stock, sold FROM product_sizes ORDER BY product_id, position, size
	`); err != nil {
		return nil, err
	}
	if ps == nil {
		ps = []domain.Product{}
	}
	bySize := map[string][]domain.SizeStock{}
	for _, row := range rows {
		bySize[row.ProductID] = append(bySize[row.ProductID], row.SizeStock)
	}
	for i := range ps {
		ps[i].SizeStock = bySize[ps[i].ID]
		if ps[i].SizeStock == nil {
			ps[i].SizeStock = []domain.SizeStock{}
		}
		if err := decodeImages(&ps[i]); err != nil {
			return nil, err
		}
	}
	return ps, nil
}

// Create inserts the product header. Size stock goes through InventoryRepo.
func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	p.ImagesJSON = encodeImages(p.Images)
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO products(`+productCols+`)
		VALUES(?,?,?,?,?,?,?,?,?)
	`), p.ID, p.Name, p.Description, p.Price, p.Category, p.SubCategory, p.Bestseller, p.ImagesJSON, p.CreatedAt)
	return err
}

// Update rewrites the editable header fields. Images are left untouched
// when p.Images is nil.
func (r *ProductRepo) Update(ctx context.Context, p domain.Product) error {
	var (
		res sql.Result
		err error
	)
	if p.Images == nil {
		res, err = r.db.ExecContext(ctx, r.db.Rebind(`
			UPDATE products SET name=?, description=?, price=?, category=?, sub_category=?, bestseller=?
			WHERE id = ?
		`), p.Name, p.Description, p.Price, p.Category, p.SubCategory, p.Bestseller, p.ID)
	} else {
		res, err = r.db.ExecContext(ctx, r.db.Rebind(`
			UPDATE products SET name=?, description=?, price=?, category=?, sub_category=?, bestseller=?, images_json=?
			WHERE id = ?
		`), p.Name, p.Description, p.Price, p.Category, p.SubCategory, p.Bestseller, encodeImages(p.Images), p.ID)
	}
	if err != nil {
		return err
	}
	return mustAffect(res, domain.ErrProductNotFound)
}

// Delete removes the product, its size rows and any cart lines pointing at it.
// Past order lines keep their copies.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM cart_items WHERE product_id = ?`), id); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM product_sizes WHERE product_id = ?`), id); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return mustAffect(res, domain.ErrProductNotFound)
}

func decodeImages(p *domain.Product) error {
	p.Images = []string{}
	if p.ImagesJSON == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(p.ImagesJSON), &p.Images); err != nil {
		return fmt.Errorf("product %s: decode images: %w", p.ID, err)
	}
	return nil
}

func encodeImages(imgs []string) string {
	if imgs == nil {
		imgs = []string{}
	}
	b, _ := json.Marshal(imgs)
	return string(b)
}

// mustAffect maps a zero-row write to notFound.
func mustAffect(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
