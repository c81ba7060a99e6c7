package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	applog "storefront/internal/log"
)

// Mount registers pages, media and the JSON API on app.
func Mount(app *fiber.App, d *Deps) {
	app.Use(Authenticate(d.Auth))

	app.Get("/", d.PageHandler.Home)
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	// guarded media to avoid traversal
	app.Get("/media/*", func(c *fiber.Ctx) error {
		if d.Media == nil {
			return c.SendStatus(fiber.StatusNotFound)
		}
		full, err := d.Media.Resolve(c.Params("*"))
		if err != nil {
			applog.Security(c, "media.traversal.block", map[string]any{"path": c.Params("*")})
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendFile(full)
	})

	api := app.Group("/api")

	user := api.Group("/user")
	user.Post("/register", d.AuthHandler.Register)
	user.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return fail(c, fiber.StatusTooManyRequests, "Too many attempts. Please try again later.")
		},
	}), d.AuthHandler.Login)
	user.Post("/admin", d.AuthHandler.Admin)
	user.Post("/logout", d.AuthHandler.Logout)

	product := api.Group("/product")
	product.Get("/list", d.ProductHandler.List)
	product.Post("/single", d.ProductHandler.Single)
	product.Get("/categories", d.ProductHandler.CategoryFacets)
	product.Get("/availability", limiter.New(limiter.Config{
		Max:        15,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|avail"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.availability.hit", nil)
			return fail(c, fiber.StatusTooManyRequests, "rate limit exceeded, retry soon")
		},
	}), d.InventoryHandler.Check)
	product.Post("/add", RequireAdmin(), d.ProductHandler.Add)
	product.Post("/edit", RequireAdmin(), d.ProductHandler.Edit)
	product.Post("/remove", RequireAdmin(), d.ProductHandler.Remove)

	cart := api.Group("/cart", RequireUser())
	cart.Post("/add", d.CartHandler.Add)
	cart.Post("/update", d.CartHandler.Update)
	cart.Post("/get", d.CartHandler.Get)

	order := api.Group("/order")
	order.Post("/place", RequireUser(), d.OrderHandler.Place)
	order.Post("/userorders", RequireUser(), d.OrderHandler.UserOrders)
	order.Get("/all", RequireAdmin(), d.OrderHandler.All)
	order.Post("/status", RequireAdmin(), d.OrderHandler.Status)
	order.Post("/payment", RequireAdmin(), d.OrderHandler.Payment)

	admin := api.Group("/admin", RequireAdmin())
	admin.Get("/inventory", d.InventoryHandler.Ledger)
	admin.Post("/users/delete", d.AdminHandler.DeleteUser)
	admin.Post("/sessions/purge", d.AdminHandler.PurgeSessions)

	api.Use(func(c *fiber.Ctx) error {
		return fail(c, fiber.StatusNotFound, "Not found")
	})
	app.Use(d.PageHandler.NotFound)
}
