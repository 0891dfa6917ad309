package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/glaspolitics/backend/internal/ingestion"
	"github.com/glaspolitics/backend/internal/metrics"
	"github.com/glaspolitics/backend/internal/oireachtas"
	"github.com/glaspolitics/backend/internal/storage/postgres"
	"github.com/glaspolitics/backend/pkg/config"
	appLogger "github.com/glaspolitics/backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	sinceFlag := flag.String("since", "", "count questions and bills from this date (YYYY-MM-DD, default 365 days ago)")
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

	since := time.Now().AddDate(0, 0, -365)
	if *sinceFlag != "" {
		since, err = time.Parse("2006-01-02", *sinceFlag)
		if err != nil {
			appLogger.Fatal("Invalid -since date", zap.String("since", *sinceFlag), zap.Error(err))
		}
	}

	appLogger.Info("Starting activity ingestion", zap.Time("since", since))
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

	client := oireachtas.NewClient(cfg.Oireachtas.BaseURL, cfg.Oireachtas.PageSize, cfg.Oireachtas.RequestDelayMS)
	processor := ingestion.NewActivityProcessor(db, client)

	count, err := processor.Run(ctx, since)
	if err != nil {
		appLogger.Fatal("Activity ingestion failed", zap.Error(err))
	}

	appLogger.Info("Activity ingestion complete", zap.Int("tds_updated", count))
}
