package handlers

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	"storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type ProductHandler struct {
	Catalog    *services.CatalogService
	Categories *repos.CategoryRepo
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	ps, err := h.Catalog.List(c.UserContext())
	if err != nil {
		return respondErr(c, "product.list", err)
	}
	return ok(c, fiber.Map{"products": ps})
}

func (h *ProductHandler) CategoryFacets(c *fiber.Ctx) error {
	facets, err := h.Categories.Facets(c.UserContext())
	if err != nil {
		return respondErr(c, "product.categories", err)
	}
	return ok(c, fiber.Map{"categories": facets})
}

type productIDRequest struct {
	ProductID string `json:"productId"`
	ID        string `json:"id"`
}

func (r productIDRequest) id() string {
	if r.ProductID != "" {
		return r.ProductID
	}
	return r.ID
}

func (h *ProductHandler) Single(c *fiber.Ctx) error {
	var req productIDRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, "product.single")
	}
	id, valid := validate.ID(req.id())
	if !valid {
		log.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return failTyped(c, fiber.StatusBadRequest, "INVALID_REQUEST", "productId is required")
	}
	p, err := h.Catalog.Get(c.UserContext(), id)
	if err != nil {
		return respondErr(c, "product.single", err)
	}
	return ok(c, fiber.Map{"product": p})
}

// Add takes the admin multipart form with image1..image4.
func (h *ProductHandler) Add(c *fiber.Ctx) error {
	in, err := productForm(c)
	if err != nil {
		return respondErr(c, "product.add", err)
	}

	var images []services.Image
	for i := 1; i <= validate.MaxImages; i++ {
		fh, err := c.FormFile(fmt.Sprintf("image%d", i))
		if err != nil {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			closeAll(images)
			return respondErr(c, "product.add", err)
		}
		images = append(images, services.Image{Filename: fh.Filename, Body: f})
	}
	defer closeAll(images)

	p, err := h.Catalog.Add(c.UserContext(), in, images)
	if err != nil {
		return respondErr(c, "product.add", err)
	}
	log.Audit(c, "product.add", map[string]any{"product_id": p.ID, "images": len(p.Images)})
	return ok(c, fiber.Map{"message": "Product Added", "product": p})
}

type editRequest struct {
	ID string `json:"id"`
	services.ProductPatch
}

func (h *ProductHandler) Edit(c *fiber.Ctx) error {
	var req editRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, "product.edit")
	}
	id, valid := validate.ID(req.ID)
	if !valid {
		return failTyped(c, fiber.StatusBadRequest, "INVALID_REQUEST", "id is required")
	}
	p, err := h.Catalog.Edit(c.UserContext(), id, req.ProductPatch)
	if err != nil {
		return respondErr(c, "product.edit", err)
	}
	log.Audit(c, "product.edit", map[string]any{"product_id": p.ID, "sizes": len(p.SizeStock)})
	return ok(c, fiber.Map{"message": "Product Updated", "product": p})
}

func (h *ProductHandler) Remove(c *fiber.Ctx) error {
	var req productIDRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, "product.remove")
	}
	id, valid := validate.ID(req.id())
	if !valid {
		return failTyped(c, fiber.StatusBadRequest, "INVALID_REQUEST", "id is required")
	}
	if err := h.Catalog.Remove(c.UserContext(), id); err != nil {
		return respondErr(c, "product.remove", err)
	}
	log.Audit(c, "product.remove", map[string]any{"product_id": id})
	return ok(c, fiber.Map{"message": "Product Removed"})
}

func productForm(c *fiber.Ctx) (services.ProductInput, error) {
	in := services.ProductInput{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		Category:    c.FormValue("category"),
		SubCategory: c.FormValue("subCategory"),
		Bestseller:  strings.EqualFold(strings.TrimSpace(c.FormValue("bestseller")), "true"),
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(c.FormValue("price")), 64)
	if err != nil {
		return in, &services.ValidationError{Field: "price", Msg: "must be a number"}
	}
	in.Price = price
	var ss []domain.SizeStock
	if err := json.Unmarshal([]byte(c.FormValue("sizeStock")), &ss); err != nil {
		return in, &services.ValidationError{Field: "sizeStock", Msg: "must be a JSON array"}
	}
	in.SizeStock = ss
	return in, nil
}

func closeAll(images []services.Image) {
	for _, img := range images {
		if f, ok := img.Body.(multipart.File); ok {
			_ = f.Close()
		}
	}
}
