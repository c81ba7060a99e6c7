package services

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

// LowStockThreshold is the count below which a size shows LOW_STOCK.
const LowStockThreshold = 5

type InventoryService struct {
	Inv *repos.InventoryRepo
}

func NewInventoryService(inv *repos.InventoryRepo) *InventoryService {
	return &InventoryService{Inv: inv}
}

// CheckAvailability converts stock to IN_STOCK / LOW_STOCK / OUT_OF_STOCK
// for every size of a product.
func (s *InventoryService) CheckAvailability(ctx context.Context, productID string) ([]domain.Availability, error) {
	ledger, err := s.Inv.SizeStock(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Availability, 0, len(ledger))
	for _, e := range ledger {
		out = append(out, Availability(e))
	}
	return out, nil
}

func Availability(e domain.SizeStock) domain.Availability {
	status := "OUT_OF_STOCK"
	switch {
	case e.Stock >= LowStockThreshold:
		status = "IN_STOCK"
	case e.Stock > 0:
		status = "LOW_STOCK"
	}
	return domain.Availability{Size: e.Size, Status: status, Stock: e.Stock}
}

// Ledger lists every (product, size) row for the admin stock view.
func (s *InventoryService) Ledger(ctx context.Context) ([]repos.InventoryRow, error) {
	rows, err := s.Inv.ListAll(ctx)
	if rows == nil && err == nil {
		rows = []repos.InventoryRow{}
	}
	return rows, err
}
