package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/glaspolitics/backend/internal/llm"
	"github.com/glaspolitics/backend/internal/metrics"
	"github.com/glaspolitics/backend/internal/news"
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

	if cfg.LLM.APIKey == "" {
		appLogger.Fatal("LLM API key is required for news scoring")
	}

	appLogger.Info("Starting news aggregation",
		zap.Int("max_articles", cfg.News.MaxArticles),
		zap.Float64("min_score", cfg.News.MinScore),
	)
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

	if err := news.SeedDefaultSources(ctx, db); err != nil {
		appLogger.Fatal("Failed to seed news sources", zap.Error(err))
	}

	llmClient := llm.NewClient(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Temperature, cfg.LLM.MaxTokens, cfg.LLM.TimeoutSec)

	aggregator := news.NewAggregator(db, news.NewFeedFetcher(), news.NewScraper(), llmClient, news.Config{
		MaxAgeDays:  cfg.News.MaxAgeDays,
		MaxArticles: cfg.News.MaxArticles,
		MinScore:    cfg.News.MinScore,
		ScrapeDelay: time.Duration(cfg.News.ScrapeDelayMS) * time.Millisecond,
	})

	kept, err := aggregator.Run(ctx)
	if err != nil {
		appLogger.Fatal("News aggregation failed", zap.Error(err))
	}

	appLogger.Info("News aggregation complete", zap.Int("articles", kept))
}
