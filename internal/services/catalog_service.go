package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"storefront/internal/cache"
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/media"
	"storefront/internal/repos"
	"storefront/internal/validate"
)

type CatalogService struct {
	DB       *sqlx.DB
	Products *repos.ProductRepo
	Inv      *repos.InventoryRepo
	Cache    cache.ProductCache
	Media    *media.Store
}

func NewCatalogService(db *sqlx.DB, pc cache.ProductCache, store *media.Store) *CatalogService {
	return &CatalogService{
		DB:       db,
		Products: repos.NewProductRepo(db),
		Inv:      repos.NewInventoryRepo(db),
		Cache:    pc,
		Media:    store,
	}
}

// ProductInput is a full product as submitted by the admin add form.
type ProductInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
	SubCategory string
	Bestseller  bool
	SizeStock   []domain.SizeStock
}

// ProductPatch carries edit fields; nil means unchanged.
type ProductPatch struct {
	Name        *string             `json:"name"`
	Description *string             `json:"description"`
	Price       *float64            `json:"price"`
	Category    *string             `json:"category"`
	SubCategory *string             `json:"subCategory"`
	Bestseller  *bool               `json:"bestseller"`
	SizeStock   *[]domain.SizeStock `json:"sizeStock"`
}

// Image is one uploaded file.
type Image struct {
	Filename string
	Body     io.Reader
}

// List returns the catalog, served from cache when possible.
func (s *CatalogService) List(ctx context.Context) ([]domain.Product, error) {
	ps, gen, err := s.Cache.Get(ctx)
	if err == nil {
		return ps, nil
	}
	miss := errors.Is(err, cache.ErrCacheMiss)
	if !miss {
		applog.Error(nil, "cache.get.fail", err, nil)
	}
	if ps, err = s.Products.List(ctx); err != nil {
		return nil, err
	}
	// gen was read before the store; an invalidation since then makes this fill a no-op
	if miss {
		if err := s.Cache.Set(ctx, gen, ps); err != nil {
			applog.Error(nil, "cache.set.fail", err, nil)
		}
	}
	return ps, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (domain.Product, error) {
	return s.Products.Get(ctx, id)
}

func (in ProductInput) check() (ProductInput, error) {
	var ok bool
	if in.Name, ok = validate.Name(in.Name); !ok {
		return in, invalid("name", "is required")
	}
	if in.Description, ok = validate.Text(in.Description, 4000); !ok {
		return in, invalid("description", "is too long")
	}
	if !validate.Price(in.Price) {
		return in, invalid("price", "must be zero or more")
	}
	if in.Category, ok = validate.Label(in.Category); !ok {
		return in, invalid("category", "is invalid")
	}
	if in.SubCategory, ok = validate.Label(in.SubCategory); !ok {
		return in, invalid("subCategory", "is invalid")
	}
	if in.SizeStock, ok = validate.SizeStock(in.SizeStock); !ok {
		return in, invalid("sizeStock", "needs distinct known sizes with non-negative counts")
	}
	return in, nil
}

// Add stores the images, then writes the product and its ledger in one tx.
func (s *CatalogService) Add(ctx context.Context, in ProductInput, images []Image) (domain.Product, error) {
	in, err := in.check()
	if err != nil {
		return domain.Product{}, err
	}
	if len(images) == 0 || len(images) > validate.MaxImages {
		return domain.Product{}, invalid("image", fmt.Sprintf("between 1 and %d images required", validate.MaxImages))
	}

	p := domain.Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		SubCategory: in.SubCategory,
		Bestseller:  in.Bestseller,
		SizeStock:   in.SizeStock,
		CreatedAt:   time.Now().UnixMilli(),
	}
	for _, img := range images {
		url, err := s.Media.Save(p.ID, img.Filename, img.Body)
		if err != nil {
			s.dropMedia(p.ID)
			if errors.Is(err, media.ErrUnsupported) {
				return domain.Product{}, invalid("image", err.Error())
			}
			return domain.Product{}, fmt.Errorf("store image: %w", err)
		}
		p.Images = append(p.Images, url)
	}

	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.Products.WithTx(tx).Create(ctx, &p); err != nil {
			return err
		}
		return s.Inv.WithTx(tx).ReplaceSizeStock(ctx, p.ID, p.SizeStock)
	})
	if err != nil {
		s.dropMedia(p.ID)
		return domain.Product{}, err
	}
	s.invalidate(ctx)
	return p, nil
}

// Edit applies patch and, when given, replaces the size ledger, atomically.
func (s *CatalogService) Edit(ctx context.Context, id string, patch ProductPatch) (domain.Product, error) {
	var out domain.Product
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		products := s.Products.WithTx(tx)
		p, err := products.Get(ctx, id)
		if err != nil {
			return err
		}
		in := ProductInput{
			Name: p.Name, Description: p.Description, Price: p.Price, Category: p.Category,
			SubCategory: p.SubCategory, Bestseller: p.Bestseller, SizeStock: p.SizeStock,
		}
		if patch.Name != nil {
			in.Name = *patch.Name
		}
		if patch.Description != nil {
			in.Description = *patch.Description
		}
		if patch.Price != nil {
			in.Price = *patch.Price
		}
		if patch.Category != nil {
			in.Category = *patch.Category
		}
		if patch.SubCategory != nil {
			in.SubCategory = *patch.SubCategory
		}
		if patch.Bestseller != nil {
			in.Bestseller = *patch.Bestseller
		}
		if patch.SizeStock != nil {
			in.SizeStock = *patch.SizeStock
		}
		if in, err = in.check(); err != nil {
			return err
		}

		p.Name, p.Description, p.Price = in.Name, in.Description, in.Price
		p.Category, p.SubCategory, p.Bestseller = in.Category, in.SubCategory, in.Bestseller
		p.Images = nil // keep stored images
		if err := products.Update(ctx, p); err != nil {
			return err
		}
		if patch.SizeStock != nil {
			if err := s.Inv.WithTx(tx).ReplaceSizeStock(ctx, p.ID, in.SizeStock); err != nil {
				return err
			}
		}
		out, err = products.Get(ctx, p.ID)
		return err
	})
	if err != nil {
		return domain.Product{}, err
	}
	s.invalidate(ctx)
	return out, nil
}

// Remove deletes the product, its ledger, cart lines referencing it and
// its images. Orders keep their line copies.
func (s *CatalogService) Remove(ctx context.Context, id string) error {
	if err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		return s.Products.WithTx(tx).Delete(ctx, id)
	}); err != nil {
		return err
	}
	s.dropMedia(id)
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if err := s.Cache.Invalidate(ctx); err != nil {
		applog.Error(nil, "cache.invalidate.fail", err, nil)
	}
}

func (s *CatalogService) dropMedia(productID string) {
	if s.Media == nil {
		return
	}
	if err := s.Media.RemoveProduct(productID); err != nil {
		applog.Error(nil, "media.remove.fail", err, map[string]any{"product_id": productID})
	}
}
