package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/glaspolitics/backend/internal/api/handlers"
	"github.com/glaspolitics/backend/internal/cache/redis"
	"github.com/glaspolitics/backend/internal/geo"
	"github.com/glaspolitics/backend/internal/llm"
	"github.com/glaspolitics/backend/internal/metrics"
	"github.com/glaspolitics/backend/internal/middleware/ratelimit"
	"github.com/glaspolitics/backend/internal/storage/postgres"
	"github.com/glaspolitics/backend/pkg/config"
	appLogger "github.com/glaspolitics/backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()

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

	appLogger.Info("Starting Glas Politics API server")
	metrics.Init()

	ctx := context.Background()

	db, err := postgres.NewClient(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		appLogger.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	cache, err := redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		appLogger.Warn("Redis unavailable, serving without cache", zap.Error(err))
		cache = nil
	} else {
		defer cache.Close()
	}

	cons, err := db.ListConstituencies(ctx)
	if err != nil {
		appLogger.Fatal("Failed to load constituencies", zap.Error(err))
	}
	index, err := geo.NewIndex(cons)
	if err != nil {
		appLogger.Fatal("Failed to build constituency index", zap.Error(err))
	}
	if index.Size() == 0 {
		appLogger.Warn("No constituency boundaries loaded; location lookups will miss")
	}

	llmClient := llm.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
		cfg.LLM.TimeoutSec,
	)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(metrics.RequestTimer())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	limiter := ratelimit.New(ratelimit.Config{})
	defer limiter.Stop()
	app.Use(limiter.Middleware())

	var scoreCache handlers.ScoreCache
	if cache != nil {
		scoreCache = cache
	}

	scoresHandler := handlers.NewScoresHandler(db, scoreCache)
	locationHandler := handlers.NewLocationHandler(index, db)
	insightsHandler := handlers.NewInsightsHandler(db, llmClient, scoreCache)
	newsHandler := handlers.NewNewsHandler(db)

	api := app.Group("/api/v1")

	api.Get("/parliamentary/scores/widget", scoresHandler.HandleWidgetScores)
	api.Get("/tds", scoresHandler.HandleListTDs)
	api.Get("/tds/:memberCode", scoresHandler.HandleGetTD)
	api.Get("/parties", scoresHandler.HandleListParties)
	api.Get("/location/constituency", locationHandler.HandleConstituencyLookup)
	api.Post("/personalized-insights", insightsHandler.HandleGenerateInsight)
	api.Get("/news", newsHandler.HandleListNews)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		if err := db.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "not ready",
			})
		}
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

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
