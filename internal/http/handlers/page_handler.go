package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	"storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/services"
)

type PageHandler struct {
	Catalog        *services.CatalogService
	Categories     *repos.CategoryRepo
	DeliveryCharge float64
}

type productCard struct {
	domain.Product
	Sizes []domain.Availability
}

// Home renders the catalog with live per-size availability, optionally
// narrowed by ?category=.
func (h *PageHandler) Home(c *fiber.Ctx) error {
	ps, err := h.Catalog.List(c.UserContext())
	if err != nil {
		log.Error(c, "home.load", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load products"})
	}
	facets, err := h.Categories.Facets(c.UserContext())
	if err != nil {
		log.Error(c, "home.facets", err, nil)
	}

	category := strings.TrimSpace(c.Query("category"))
	cards := make([]productCard, 0, len(ps))
	for _, p := range ps {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		card := productCard{Product: p, Sizes: make([]domain.Availability, 0, len(p.SizeStock))}
		for _, e := range p.SizeStock {
			card.Sizes = append(card.Sizes, services.Availability(e))
		}
		cards = append(cards, card)
	}
	return c.Render("home", fiber.Map{
		"Products":       cards,
		"Facets":         facets,
		"Category":       category,
		"DeliveryCharge": h.DeliveryCharge,
	})
}

func (h *PageHandler) NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
}
