package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/glaspolitics/backend/internal/geo"
	"github.com/glaspolitics/backend/internal/storage/postgres"
	"github.com/glaspolitics/backend/pkg/config"
	appLogger "github.com/glaspolitics/backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	filePath := flag.String("file", "", "GeoJSON feature collection of constituency boundaries (required)")
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

	if *filePath == "" {
		appLogger.Fatal("-file is required")
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		appLogger.Fatal("Failed to read boundary file", zap.String("file", *filePath), zap.Error(err))
	}

	appLogger.Info("Loading constituency boundaries",
		zap.String("file", *filePath),
		zap.Float64("simplify_tolerance", cfg.Geo.SimplifyTolerance),
	)

	cons, err := geo.ParseBoundaries(data, cfg.Geo.SimplifyTolerance)
	if err != nil {
		appLogger.Fatal("Failed to parse boundaries", zap.Error(err))
	}

	ctx := context.Background()

	db, err := postgres.NewClient(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		appLogger.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	for i := range cons {
		if err := db.UpsertConstituency(ctx, &cons[i]); err != nil {
			appLogger.Fatal("Failed to store constituency",
				zap.String("constituency", cons[i].Name),
				zap.Error(err),
			)
		}
	}

	appLogger.Info("Constituency boundaries loaded", zap.Int("constituencies", len(cons)))
}
