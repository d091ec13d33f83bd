package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/smartcity/collisions/internal/config"
	"github.com/smartcity/collisions/internal/delivery/http"
	"github.com/smartcity/collisions/internal/domain"
	"github.com/smartcity/collisions/internal/repository/httpcsv"
	"github.com/smartcity/collisions/internal/repository/postgres"
	"github.com/smartcity/collisions/internal/service"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Row source
	source, closeSource := newSource(cfg)
	defer closeSource()
	log.Printf("Using collision source %s (max_rows=%d)", source.Name(), cfg.MaxRows)

	// Dependency Injection: Services
	normalizer := service.NewNormalizer(cfg.Schema)
	loader := service.NewCachedLoader(source, normalizer, cfg.FetchTimeout)
	dashboardSvc := service.NewDashboardService(loader, cfg.MaxRows)

	if cfg.Preload {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout)
		if err := dashboardSvc.Warm(ctx); err != nil {
			log.Printf("Warning: Could not preload collisions: %v", err)
		}
		cancel()
	}

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "NYC Collisions API v1.0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.FetchTimeout + 10*time.Second,
		ErrorHandler: http.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Routes
	http.SetupRoutes(app, dashboardSvc, source)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited gracefully")
}

// newSource picks the row source for the configured kind. When PostgreSQL
// is unreachable the embedded mock rows are served instead.
func newSource(cfg *config.Config) (domain.RowSource, func()) {
	switch cfg.DataSource {
	case config.SourcePostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err == nil {
			err = pool.Ping(ctx)
			if err != nil {
				pool.Close()
			}
		}
		if err != nil {
			log.Printf("Warning: Could not connect to database: %v", err)
			log.Println("Running with mock data only")
			return postgres.NewMockSource(), func() {}
		}
		log.Println("Connected to PostgreSQL")
		return postgres.NewSource(pool, cfg.CollisionsTable, cfg.OrderBy...), pool.Close
	case config.SourceMock:
		return postgres.NewMockSource(), func() {}
	default:
		return httpcsv.NewSource(cfg.DataURL, cfg.FetchTimeout), func() {}
	}
}
