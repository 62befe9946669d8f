package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/festivaldir/curator/internal/api/handlers"
	"github.com/festivaldir/curator/internal/metrics"
	"github.com/festivaldir/curator/internal/models"
	"github.com/festivaldir/curator/internal/rules"
	"github.com/festivaldir/curator/internal/signals"
	"github.com/festivaldir/curator/internal/storage/sqlite"
	"github.com/festivaldir/curator/pkg/config"
	appLogger "github.com/festivaldir/curator/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Vendor Curator API Server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	if err := sqliteClient.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	mode := models.Mode(cfg.Rules.Mode)
	keywords := signals.DefaultKeywordsV2()
	if mode == models.ModeV1 {
		keywords = signals.DefaultKeywordsV1()
	}
	extractor := signals.NewExtractor(keywords)
	engine := rules.NewEngine(mode, rules.ThresholdsFromConfig(mode, cfg.Rules), extractor)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	classifyHandler := handlers.NewClassifyHandler(extractor, engine)
	vendorsHandler := handlers.NewVendorsHandler(sqliteClient)
	healthHandler := handlers.NewHealthHandler()

	api := app.Group("/api/v1")
	api.Post("/classify", classifyHandler.HandleClassify)
	api.Get("/vendors", vendorsHandler.HandleList)
	api.Get("/health", healthHandler.HandleHealth)

	app.Get("/metrics", metrics.MetricsHandler())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
