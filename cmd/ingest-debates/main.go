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

	fromFlag := flag.String("from", "", "first debate date (YYYY-MM-DD, default 7 days ago)")
	toFlag := flag.String("to", "", "last debate date (YYYY-MM-DD, default today)")
	skipChunking := flag.Bool("skip-chunking", false, "store speeches without chunking them")
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

	dateEnd := time.Now()
	dateStart := dateEnd.AddDate(0, 0, -7)
	if *fromFlag != "" {
		dateStart, err = time.Parse("2006-01-02", *fromFlag)
		if err != nil {
			appLogger.Fatal("Invalid -from date", zap.String("from", *fromFlag), zap.Error(err))
		}
	}
	if *toFlag != "" {
		dateEnd, err = time.Parse("2006-01-02", *toFlag)
		if err != nil {
			appLogger.Fatal("Invalid -to date", zap.String("to", *toFlag), zap.Error(err))
		}
	}
	if dateEnd.Before(dateStart) {
		appLogger.Fatal("Date range is inverted",
			zap.Time("from", dateStart),
			zap.Time("to", dateEnd),
		)
	}

	appLogger.Info("Starting debate ingestion",
		zap.String("chamber", cfg.Oireachtas.ChamberID),
		zap.Time("from", dateStart),
		zap.Time("to", dateEnd),
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
	processor := ingestion.NewDebateProcessor(db, client, cfg.Oireachtas.ChamberID)

	count, err := processor.Run(ctx, dateStart, dateEnd)
	if err != nil {
		appLogger.Fatal("Debate ingestion failed", zap.Error(err))
	}
	appLogger.Info("Speeches stored", zap.Int("speeches", count))

	if !*skipChunking {
		if err := processor.ChunkPending(ctx); err != nil {
			appLogger.Fatal("Chunking failed", zap.Error(err))
		}
	}

	appLogger.Info("Debate ingestion complete")
}
