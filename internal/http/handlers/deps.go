package handlers

import (
	"github.com/jmoiron/sqlx"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/events"
	"storefront/internal/media"
	"storefront/internal/repos"
	"storefront/internal/services"
)

type Deps struct {
	Auth  *services.AuthService
	Media *media.Store

	AuthHandler      *AuthHandler
	ProductHandler   *ProductHandler
	InventoryHandler *InventoryHandler
	CartHandler      *CartHandler
	OrderHandler     *OrderHandler
	AdminHandler     *AdminHandler
	PageHandler      *PageHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, pc cache.ProductCache, pub events.Publisher, store *media.Store) *Deps {
	prodRepo := repos.NewProductRepo(db)
	invRepo := repos.NewInventoryRepo(db)
	cartRepo := repos.NewCartRepo(db)
	userRepo := repos.NewUserRepo(db)
	categoryRepo := repos.NewCategoryRepo(db)

	authSvc := services.NewAuthService(userRepo,
		services.AdminPolicy{Email: cfg.AdminEmail, Password: cfg.AdminPassword}, cfg.SessionTTL)
	catalogSvc := services.NewCatalogService(db, pc, store)
	invSvc := services.NewInventoryService(invRepo)
	cartSvc := services.NewCartService(cartRepo, prodRepo)
	orderSvc := services.NewOrderService(db, pc, pub, cfg.DeliveryCharge)

	return &Deps{
		Auth:             authSvc,
		Media:            store,
		AuthHandler:      &AuthHandler{Auth: authSvc},
		ProductHandler:   &ProductHandler{Catalog: catalogSvc, Categories: categoryRepo},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
		CartHandler:      &CartHandler{Cart: cartSvc},
		OrderHandler:     &OrderHandler{Order: orderSvc},
		AdminHandler:     &AdminHandler{Users: userRepo},
		PageHandler:      &PageHandler{Catalog: catalogSvc, Categories: categoryRepo, DeliveryCharge: cfg.DeliveryCharge},
	}
}
