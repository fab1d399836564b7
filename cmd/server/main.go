package main

import (
	"log"
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/corvid-labs/rookery/backend/internal/cache"
	"github.com/corvid-labs/rookery/backend/internal/id"
	"github.com/corvid-labs/rookery/backend/internal/metrics"
	"github.com/corvid-labs/rookery/backend/internal/router"
	"github.com/corvid-labs/rookery/backend/pkg/config"
	"github.com/corvid-labs/rookery/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// ID generation is per-node; two nodes sharing an ID would collide.
	ids, err := id.NewGenerator(cfg.NodeID)
	if err != nil {
		log.Fatalf("Failed to initialize id generator: %v", err)
	}

	timelineCache := cache.NewMemoryCache(cfg.CacheWindow)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Setup global middleware
	router.SetupMiddleware(e, logger)

	// Setup routes and dependencies
	if err := router.SetupRoutes(e, db.Postgres, db.Mongo, timelineCache, ids, logger); err != nil {
		log.Fatalf("Failed to set up routes: %v", err)
	}

	// Validator
	e.Validator = validators.NewValidator()

	// Metrics on a side port
	metricsServer, err := metrics.NewHTTPServer(cfg.MetricsPort)
	if err != nil {
		log.Fatalf("Failed to start metrics server: %v", err)
	}
	defer metricsServer.Shutdown()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
