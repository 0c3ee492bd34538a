package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"retail-backoffice/internal/config"
	"retail-backoffice/internal/handler"
	"retail-backoffice/internal/middleware"
	"retail-backoffice/internal/repository"
	"retail-backoffice/internal/service"
	"retail-backoffice/internal/utils"
)

func SetupAPIRoutes(
	router fiber.Router,
	db *sqlx.DB,
	redisClient *redis.Client,
	cfg *config.Config,
	store *session.Store,
) {
	// Repositories
	userRepo := repository.NewUserRepository(db)
	importRepo := repository.NewImportRepository(db, cfg.BatchSize)
	productRepo := repository.NewProductRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)

	// Services
	authService := service.NewAuthService(userRepo, cfg)
	importService := service.NewImportService(importRepo, redisClient, cfg, utils.GetLogger())
	reportService := service.NewReportService(importRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, store)
	importHandler := handler.NewImportHandler(importService, reportService, importRepo)
	productHandler := handler.NewProductHandler(productRepo)
	supplierHandler := handler.NewSupplierHandler(supplierRepo)

	// Public routes
	auth := router.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/register", authHandler.Register)
	auth.Post("/logout", authHandler.Logout)

	// Protected routes
	protected := router.Group("", middleware.AuthMiddleware(cfg))

	protected.Get("/auth/me", authHandler.Me)

	// Import routes
	imports := protected.Group("/imports")
	imports.Get("/templates", importHandler.Templates)
	imports.Get("/templates/:key/workbook", importHandler.DownloadTemplate)
	imports.Post("/detect", importHandler.Detect)
	imports.Post("/", importHandler.Import)
	imports.Get("/", importHandler.Jobs)
	imports.Get("/report", importHandler.DownloadJobs)
	imports.Get("/:code", importHandler.JobDetail)
	imports.Get("/:code/rows", importHandler.JobRows)
	imports.Get("/:code/progress", importHandler.Progress)
	imports.Get("/:code/invalid-report", importHandler.DownloadInvalidRows)

	// Product routes
	products := protected.Group("/products")
	products.Get("/", productHandler.GetAll)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", productHandler.Create)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	// Supplier routes
	suppliers := protected.Group("/suppliers")
	suppliers.Get("/", supplierHandler.GetAll)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Post("/", supplierHandler.Create)
	suppliers.Put("/:id", supplierHandler.Update)
	suppliers.Delete("/:id", supplierHandler.Delete)
}
