package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type CategoryRepo struct{ db sqlx.ExtContext }

func NewCategoryRepo(db sqlx.ExtContext) *CategoryRepo { return &CategoryRepo{db: db} }

// Facets counts products per (category, subCategory), alphabetically.
func (r *CategoryRepo) Facets(ctx context.Context) ([]domain.CategoryFacet, error) {
	out := []domain.CategoryFacet{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT category, sub_category, COUNT(*) AS products
		FROM products
		GROUP BY category, sub_category
		ORDER BY category, sub_category
	`)
	return out, err
}
