package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/glaspolitics/backend/internal/storage/postgres"
	"github.com/glaspolitics/backend/internal/wikipedia"
	"github.com/glaspolitics/backend/pkg/config"
	appLogger "github.com/glaspolitics/backend/pkg/logger"
)

// Delay between Wikipedia requests. The API asks bulk clients to stay
// well under the rate limit rather than hammer it.
const lookupDelay = 300 * time.Millisecond

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

	appLogger.Info("Starting Wikipedia enrichment")

	ctx := context.Background()

	db, err := postgres.NewClient(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		appLogger.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer db.Close()

	tds, err := db.TDsMissingImages(ctx)
	if err != nil {
		appLogger.Fatal("Failed to list TDs missing images", zap.Error(err))
	}
	if len(tds) == 0 {
		appLogger.Info("All TDs already have portraits")
		return
	}

	client := wikipedia.NewClient(cfg.Wikipedia.BaseURL, cfg.Wikipedia.ThumbnailSize)

	enriched := 0
	for _, td := range tds {
		image, err := client.LookupPortrait(ctx, td.FullName)
		if err != nil {
			appLogger.Warn("Portrait lookup failed",
				zap.String("member_code", td.MemberCode),
				zap.Error(err),
			)
			continue
		}
		if image.ThumbnailURL == "" {
			appLogger.Debug("No portrait found",
				zap.String("member_code", td.MemberCode),
				zap.String("name", td.FullName),
			)
			continue
		}

		if err := db.UpdateTDImage(ctx, td.MemberCode, image.ThumbnailURL, image.Title); err != nil {
			appLogger.Fatal("Failed to store portrait",
				zap.String("member_code", td.MemberCode),
				zap.Error(err),
			)
		}
		enriched++

		time.Sleep(lookupDelay)
	}

	appLogger.Info("Wikipedia enrichment complete",
		zap.Int("candidates", len(tds)),
		zap.Int("enriched", enriched),
	)
}
