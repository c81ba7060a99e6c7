package services

import (
	"context"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

type CartService struct {
	Carts *repos.CartRepo
	Prods *repos.ProductRepo
}

func NewCartService(carts *repos.CartRepo, prods *repos.ProductRepo) *CartService {
	return &CartService{Carts: carts, Prods: prods}
}

func (s *CartService) Get(ctx context.Context, userID string) (domain.Cart, error) {
	return s.Carts.Get(ctx, userID)
}

// Add puts one more unit of productID in size into the cart.
func (s *CartService) Add(ctx context.Context, userID, productID, size string) error {
	sz, err := s.offered(ctx, productID, size)
	if err != nil {
		return err
	}
	return s.Carts.Add(ctx, userID, productID, sz, 1)
}

// Update sets a line's quantity; qty <= 0 removes it. Removal works even
// for products that no longer exist.
func (s *CartService) Update(ctx context.Context, userID, productID, size string, qty int) error {
	if qty <= 0 {
		return s.Carts.SetQty(ctx, userID, productID, domain.Size(strings.TrimSpace(size)), 0)
	}
	sz, err := s.offered(ctx, productID, size)
	if err != nil {
		return err
	}
	return s.Carts.SetQty(ctx, userID, productID, sz, qty)
}

func (s *CartService) offered(ctx context.Context, productID, size string) (domain.Size, error) {
	if strings.TrimSpace(productID) == "" {
		return "", invalid("itemId", "is required")
	}
	sz := domain.Size(strings.TrimSpace(size))
	if sz == "" {
		return "", invalid("size", "is required")
	}
	p, err := s.Prods.Get(ctx, productID)
	if err != nil {
		return "", err
	}
	if _, ok := p.Entry(sz); !ok {
		return "", domain.ErrSizeNotFound
	}
	return sz, nil
}
