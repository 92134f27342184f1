package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/foxxcyber/receipt-grammar/internal/config"
	"github.com/foxxcyber/receipt-grammar/internal/database"
	"github.com/foxxcyber/receipt-grammar/internal/handlers"
	"github.com/foxxcyber/receipt-grammar/internal/middleware"
	"github.com/foxxcyber/receipt-grammar/internal/ocr"
	"github.com/foxxcyber/receipt-grammar/internal/services"
)

func main() {
	// Load .env file if it exists
	godotenv.Load()

	cfg := config.Load()
	if !cfg.IsDevelopment() && cfg.JWTSecret == config.DefaultJWTSecret {
		log.Printf("Warning: JWT_SECRET is the built-in default in %s", cfg.Environment)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := database.EnsureAdminUser(db, cfg); err != nil {
		log.Printf("Warning: Could not ensure admin user: %v", err)
	}

	validator, err := services.NewPayloadValidator()
	if err != nil {
		log.Fatalf("Failed to compile request schema: %v", err)
	}
	extraction := services.NewExtractionService(cfg.FuzzyThreshold)

	// Image storage and OCR are optional; token extraction works without them
	var images handlers.ImageStore
	storageService := initStorage(cfg)
	if storageService != nil {
		images = storageService
	}

	var recognizer handlers.Recognizer
	engine, err := ocr.New(cfg.OCRLanguage, cfg.OCRGapFactor)
	if err != nil {
		log.Printf("Warning: OCR disabled: %v", err)
	} else {
		defer engine.Close()
		recognizer = engine
		log.Println("Receipt scanning service initialized")
	}

	go func() {
		if _, err := cleanupExpiredReceipts(context.Background(), db, storageService); err != nil {
			log.Printf("Warning: Failed to cleanup expired receipts: %v", err)
		}
	}()

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    cfg.MaxUploadBytes() + 1024*1024,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path} ${respHeader:X-Request-ID}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.AllowedOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:  "GET, POST, DELETE, OPTIONS",
		ExposeHeaders: middleware.RequestIDHeader,
	}))

	h := handlers.New(db, db, cfg)
	receiptHandler := handlers.NewReceiptHandler(db, cfg, images, recognizer, extraction, validator)
	itemHandler := handlers.NewItemHandler(services.NewPriceHistory(db))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"ocr":     recognizer != nil,
			"storage": images != nil,
		})
	})

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Get("/me", middleware.AuthRequired(cfg), h.GetAccount)

	api.Post("/extract", middleware.AuthRequired(cfg), receiptHandler.Extract)

	receipts := api.Group("/receipts", middleware.AuthRequired(cfg))
	receipts.Post("/", receiptHandler.CreateReceipt)
	receipts.Post("/upload", receiptHandler.UploadReceipt)
	receipts.Get("/", receiptHandler.ListReceipts)
	receipts.Get("/export", receiptHandler.ExportReceipts)
	receipts.Get("/:id", receiptHandler.GetReceipt)
	receipts.Get("/:id/image", receiptHandler.GetReceiptImage)
	receipts.Delete("/:id", receiptHandler.DeleteReceipt)

	items := api.Group("/items", middleware.AuthRequired(cfg))
	items.Get("/history", itemHandler.GetItemHistory)

	admin := api.Group("/admin", middleware.AuthRequired(cfg), middleware.AdminRequired())
	admin.Post("/cleanup", func(c *fiber.Ctx) error {
		purged, err := cleanupExpiredReceipts(c.Context(), db, storageService)
		if err != nil {
			return handlers.Error(c, fiber.StatusInternalServerError, "cleanup failed")
		}
		return handlers.Success(c, fiber.Map{"purged_images": purged})
	})

	log.Printf("Server starting on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

func initStorage(cfg *config.Config) *services.StorageService {
	if cfg.S3AccessKey == "" || cfg.S3SecretKey == "" {
		log.Println("S3 credentials not configured, receipt images will not be stored")
		return nil
	}

	storageService, err := services.NewStorageService(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3Region, cfg.S3UseSSL)
	if err != nil {
		log.Printf("Warning: Failed to initialize storage service: %v", err)
		return nil
	}

	if err := storageService.EnsureBucket(context.Background()); err != nil {
		log.Printf("Warning: Failed to ensure S3 bucket exists: %v", err)
	}
	return storageService
}

// cleanupExpiredReceipts purges receipts past their retention and their images,
// returning how many images were removed
func cleanupExpiredReceipts(ctx context.Context, db *database.DB, storageService *services.StorageService) (int, error) {
	keys, err := db.CleanupExpiredReceipts(ctx)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if storageService == nil {
		log.Printf("Warning: %d expired receipt image(s) left in storage, S3 not configured", len(keys))
		return 0, nil
	}

	if err := storageService.DeleteMultiple(ctx, keys); err != nil {
		log.Printf("Warning: Failed to delete some S3 objects: %v", err)
		return 0, nil
	}
	log.Printf("Deleted %d expired receipt image(s) from storage", len(keys))
	return len(keys), nil
}
