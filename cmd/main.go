package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/kietute/safevoice/internal/api/handlers"
	"github.com/kietute/safevoice/internal/api/router"
	"github.com/kietute/safevoice/internal/auth"
	"github.com/kietute/safevoice/internal/config"
	"github.com/kietute/safevoice/internal/logger"
	"github.com/kietute/safevoice/internal/media"
	"github.com/kietute/safevoice/internal/middleware"
	"github.com/kietute/safevoice/internal/storage"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	dsn := storage.BuildDSN(cfg.Database)
	store, err := storage.NewPostgresStorage(dsn)
	if err != nil {
		zapLogger.Fatal("Failed to initialize storage", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName: "SafeVoice",
		// Base64 image payloads can approach the per-file limit.
		BodyLimit: 52 * 1024 * 1024,
	})

	app.Use(cors.New())
	app.Use(fiberlogger.New())

	uploader := media.NewCloudinaryClient(cfg.Cloudinary, zapLogger)
	pinService := auth.NewPinService(store, cfg.Pin.Fallback, zapLogger)

	publicHandler := handlers.NewPublicHandler(store, uploader, cfg.Identity.Secret, zapLogger)
	authHandler := handlers.NewAuthHandler(store, cfg.JWT.Secret, cfg.JWT.Expiration, zapLogger)
	adminHandler := handlers.NewAdminHandler(store, pinService, cfg.Identity.Secret, zapLogger)
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	apiRouter := router.NewRouter(
		app,
		publicHandler,
		authHandler,
		adminHandler,
		authMiddleware,
	)
	apiRouter.SetupRoutes()

	zapLogger.Info("Server starting", zap.String("port", cfg.Server.Port))
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}
