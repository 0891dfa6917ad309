package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/glaspolitics/backend/internal/metrics"
	"github.com/glaspolitics/backend/pkg/logger"
)

// Default TTLs per cached payload type. Widget and listing payloads change
// only when a scoring or ingestion job runs; constituency boundaries are
// effectively static between electoral reviews.
const (
	WidgetTTL       = 15 * time.Minute
	ConstituencyTTL = 24 * time.Hour
	InsightTTL      = 7 * 24 * time.Hour
)

type Client struct {
	client *redis.Client
}

func NewClient(host string, port int, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// SetJSON caches any JSON-serializable payload under a namespaced key.
func (c *Client) SetJSON(ctx context.Context, cacheType, key string, payload interface{}, ttl time.Duration) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	err = c.client.Set(ctx, fmt.Sprintf("%s:%s", cacheType, key), data, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set %s cache: %w", cacheType, err)
	}

	logger.Debug("Payload cached",
		zap.String("cache_type", cacheType),
		zap.String("key", key),
		zap.Duration("ttl", ttl),
	)
	return nil
}

// GetJSON loads a cached payload into out. A miss returns (false, nil).
func (c *Client) GetJSON(ctx context.Context, cacheType, key string, out interface{}) (bool, error) {
	data, err := c.client.Get(ctx, fmt.Sprintf("%s:%s", cacheType, key)).Bytes()
	if err == redis.Nil {
		metrics.CacheMisses.WithLabelValues(cacheType).Inc()
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get %s cache: %w", cacheType, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached payload: %w", err)
	}

	metrics.CacheHits.WithLabelValues(cacheType).Inc()
	logger.Debug("Cache hit", zap.String("cache_type", cacheType), zap.String("key", key))
	return true, nil
}

// InvalidateScores drops every cached widget and listing payload. The
// scoring jobs call this after rewriting scores so the API never serves a
// stale scorecard for the full TTL.
func (c *Client) InvalidateScores(ctx context.Context) error {
	for _, pattern := range []string{"widget:*", "tds:*", "parties:*"} {
		iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
		for iter.Next(ctx) {
			if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
				logger.Warn("Failed to delete cache key", zap.String("key", iter.Val()), zap.Error(err))
			}
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("failed to iterate cache keys: %w", err)
		}
	}

	logger.Info("Score caches invalidated")
	return nil
}
