package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"retail-backoffice/internal/config"
	"retail-backoffice/internal/handler"
	"retail-backoffice/internal/middleware"
	"retail-backoffice/internal/repository"
	"retail-backoffice/internal/service"
)

func Setup(app *fiber.App, db *sqlx.DB, redis *redis.Client, cfg *config.Config) {
	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"app":    cfg.AppName,
		})
	})

	// One session store backs both the web pages and the login handlers.
	store := session.New(session.Config{
		Expiration:     24 * time.Hour,
		CookieHTTPOnly: true,
	})

	// Web routes (HTML)
	web := app.Group("")
	setupWebRoutes(web, db, cfg, store)

	// API routes (JSON)
	api := app.Group("/api/v1")
	SetupAPIRoutes(api, db, redis, cfg, store)
}

func setupWebRoutes(router fiber.Router, db *sqlx.DB, cfg *config.Config, store *session.Store) {
	userRepo := repository.NewUserRepository(db)
	authService := service.NewAuthService(userRepo, cfg)
	authHandler := handler.NewAuthHandler(authService, store)

	// Authentication pages
	router.Get("/login", middleware.GuestMiddleware(store), func(c *fiber.Ctx) error {
		return c.Render("auth/login", fiber.Map{
			"Title": "Login",
		})
	})
	router.Post("/login", authHandler.WebLogin)
	router.Post("/logout", authHandler.WebLogout)

	// Everything below requires a live session.
	pages := router.Group("", middleware.WebAuthMiddleware(store))

	renderJobsIndex := func(c *fiber.Ctx) error {
		user, _ := authService.GetCurrentUser(c, store)
		return c.Render("imports/index", fiber.Map{
			"Title": "Import Jobs",
			"User":  user,
		})
	}
	pages.Get("/", renderJobsIndex)
	pages.Get("/imports", renderJobsIndex)

	pages.Get("/imports/new", func(c *fiber.Ctx) error {
		return c.Render("imports/new", fiber.Map{
			"Title": "New Import",
		})
	})

	pages.Get("/imports/:code", func(c *fiber.Ctx) error {
		return c.Render("imports/detail", fiber.Map{
			"Title":   "Import Detail",
			"JobCode": c.Params("code"),
		})
	})

	pages.Get("/products", func(c *fiber.Ctx) error {
		return c.Render("catalog/products", fiber.Map{
			"Title": "Products",
		})
	})

	pages.Get("/suppliers", func(c *fiber.Ctx) error {
		return c.Render("catalog/suppliers", fiber.Map{
			"Title": "Suppliers",
		})
	})
}
