package main

import (
	"context"
	"fmt"
	"os"

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

	appLogger.Info("Starting member ingestion",
		zap.String("chamber", cfg.Oireachtas.ChamberID),
		zap.Int("house", cfg.Oireachtas.HouseNo),
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

	client := oireachtas.NewClient(cfg.Oireachtas.BaseURL, cfg.Oireachtas.PageSize, cfg.Oireachtas.RequestDelayMS)
	processor := ingestion.NewMemberProcessor(db, client, cfg.Oireachtas.ChamberID, cfg.Oireachtas.HouseNo)

	count, err := processor.Run(ctx)
	if err != nil {
		appLogger.Fatal("Member ingestion failed", zap.Error(err))
	}

	appLogger.Info("Member ingestion complete", zap.Int("members", count))
}
