package postgres

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/glaspolitics/backend/internal/storage/models"
	"github.com/glaspolitics/backend/pkg/logger"
)

func (c *Client) ListEnabledSources(ctx context.Context) ([]models.NewsSource, error) {
	query := `SELECT id, name, feed_url, enabled, created_at FROM news_sources WHERE enabled ORDER BY id`

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list news sources: %w", err)
	}
	defer rows.Close()

	var sources []models.NewsSource
	for rows.Next() {
		var s models.NewsSource
		if err := rows.Scan(&s.ID, &s.Name, &s.FeedURL, &s.Enabled, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan news source row: %w", err)
		}
		sources = append(sources, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate news source rows: %w", err)
	}

	return sources, nil
}

func (c *Client) SeedSource(ctx context.Context, name, feedURL string) error {
	query := `
		INSERT INTO news_sources (name, feed_url)
		VALUES ($1, $2)
		ON CONFLICT (feed_url) DO NOTHING
	`

	if _, err := c.pool.Exec(ctx, query, name, feedURL); err != nil {
		return fmt.Errorf("failed to seed news source: %w", err)
	}
	return nil
}

func (c *Client) UpsertArticle(ctx context.Context, article *models.NewsArticle) error {
	query := `
		INSERT INTO news_articles (id, url, title, source, summary, content, score, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (url) DO UPDATE SET
			title = EXCLUDED.title,
			summary = EXCLUDED.summary,
			score = EXCLUDED.score
	`

	_, err := c.pool.Exec(ctx, query,
		article.ID, article.URL, article.Title, article.Source,
		article.Summary, article.Content, article.Score, article.PublishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert article: %w", err)
	}

	logger.Debug("Article upserted", zap.String("url", article.URL), zap.Float64("score", article.Score))
	return nil
}

// KnownArticleURLs returns URLs already stored since the given time, used to
// skip re-scoring articles on repeated aggregator runs.
func (c *Client) KnownArticleURLs(ctx context.Context, since time.Time) (map[string]bool, error) {
	query := `SELECT url FROM news_articles WHERE created_at >= $1`

	rows, err := c.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query known article urls: %w", err)
	}
	defer rows.Close()

	known := make(map[string]bool)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan url row: %w", err)
		}
		known[url] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate url rows: %w", err)
	}

	return known, nil
}

func (c *Client) ListArticles(ctx context.Context, limit int) ([]models.NewsArticle, error) {
	query := `
		SELECT id, url, title, source, summary, score, published_at, created_at
		FROM news_articles
		ORDER BY published_at DESC
		LIMIT $1
	`

	rows, err := c.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	var articles []models.NewsArticle
	for rows.Next() {
		var a models.NewsArticle
		if err := rows.Scan(&a.ID, &a.URL, &a.Title, &a.Source, &a.Summary, &a.Score, &a.PublishedAt, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate article rows: %w", err)
	}

	return articles, nil
}
