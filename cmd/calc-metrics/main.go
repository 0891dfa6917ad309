package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/glaspolitics/backend/internal/cache/redis"
	"github.com/glaspolitics/backend/internal/llm"
	"github.com/glaspolitics/backend/internal/metrics"
	"github.com/glaspolitics/backend/internal/scoring"
	"github.com/glaspolitics/backend/internal/scoring/topics"
	"github.com/glaspolitics/backend/internal/storage/postgres"
	"github.com/glaspolitics/backend/pkg/config"
	appLogger "github.com/glaspolitics/backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	topicLimit := flag.Int("topic-limit", 200, "max debate sections to label per run")
	skipTopics := flag.Bool("skip-topics", false, "recompute scores without extracting topics")
	flag.Parse()

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

	appLogger.Info("Starting metrics calculation", zap.Int("period_days", cfg.Scoring.PeriodDays))
	metrics.Init()

	ctx := context.Background()

	db, err := postgres.NewClient(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		appLogger.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer db.Close()

	if !*skipTopics {
		var labeler topics.TopicLabeler
		if cfg.LLM.APIKey != "" {
			labeler = llm.NewClient(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Temperature, cfg.LLM.MaxTokens, cfg.LLM.TimeoutSec)
		} else {
			appLogger.Warn("No LLM API key configured, topics will use keyword extraction only")
		}

		labelled, err := topics.NewExtractor(db, labeler).Run(ctx, *topicLimit)
		if err != nil {
			appLogger.Fatal("Topic extraction failed", zap.Error(err))
		}
		appLogger.Info("Topic extraction complete", zap.Int("sections", labelled))
	}

	periodEnd := time.Now()
	periodStart := periodEnd.AddDate(0, 0, -cfg.Scoring.PeriodDays)

	rescored, err := scoring.NewRecomputer(db).Run(ctx, periodStart, periodEnd)
	if err != nil {
		appLogger.Fatal("Score recomputation failed", zap.Error(err))
	}
	appLogger.Info("Scores recomputed", zap.Int("tds", rescored))

	cache, err := redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		appLogger.Warn("Redis unavailable, cached scores will age out on TTL", zap.Error(err))
		return
	}
	defer cache.Close()

	if err := cache.InvalidateScores(ctx); err != nil {
		appLogger.Warn("Cache invalidation failed", zap.Error(err))
	}
}
