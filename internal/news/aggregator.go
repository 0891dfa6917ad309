package news

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/glaspolitics/backend/internal/llm"
	"github.com/glaspolitics/backend/internal/metrics"
	"github.com/glaspolitics/backend/internal/storage/models"
	"github.com/glaspolitics/backend/pkg/logger"
)

type Store interface {
	ListEnabledSources(ctx context.Context) ([]models.NewsSource, error)
	KnownArticleURLs(ctx context.Context, since time.Time) (map[string]bool, error)
	UpsertArticle(ctx context.Context, article *models.NewsArticle) error
}

type Fetcher interface {
	Fetch(ctx context.Context, sources []models.NewsSource, cutoff time.Time) []FeedItem
}

type ArticleScraper interface {
	ScrapeArticle(ctx context.Context, articleURL string) (string, error)
}

type ArticleScorer interface {
	ScoreArticle(ctx context.Context, title, content string) (*llm.ArticleScore, error)
}

type Config struct {
	MaxAgeDays  int
	MaxArticles int
	MinScore    float64
	ScrapeDelay time.Duration
}

// Aggregator runs the news pipeline: pull feeds, drop articles already
// stored or duplicated across outlets, scrape each candidate's body,
// have the model rate its relevance, and keep only articles at or above
// the configured threshold.
type Aggregator struct {
	store   Store
	fetcher Fetcher
	scraper ArticleScraper
	scorer  ArticleScorer
	cfg     Config
}

func NewAggregator(store Store, fetcher Fetcher, scraper ArticleScraper, scorer ArticleScorer, cfg Config) *Aggregator {
	return &Aggregator{
		store:   store,
		fetcher: fetcher,
		scraper: scraper,
		scorer:  scorer,
		cfg:     cfg,
	}
}

func (a *Aggregator) Run(ctx context.Context) (int, error) {
	sources, err := a.store.ListEnabledSources(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list news sources: %w", err)
	}
	if len(sources) == 0 {
		logger.Warn("No enabled news sources")
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -a.cfg.MaxAgeDays)
	items := a.fetcher.Fetch(ctx, sources, cutoff)

	known, err := a.store.KnownArticleURLs(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to load known article urls: %w", err)
	}

	candidates := dedupe(items, known)
	logger.Info("News candidates selected",
		zap.Int("fetched", len(items)),
		zap.Int("candidates", len(candidates)),
	)

	kept := 0
	for _, item := range candidates {
		if kept >= a.cfg.MaxArticles {
			break
		}
		if err := ctx.Err(); err != nil {
			return kept, err
		}

		stored, err := a.processItem(ctx, item)
		if err != nil {
			logger.Warn("Failed to process article",
				zap.String("url", item.URL),
				zap.Error(err),
			)
			metrics.ArticlesScored.WithLabelValues("error").Inc()
			continue
		}
		if stored {
			kept++
		}

		if a.cfg.ScrapeDelay > 0 {
			select {
			case <-time.After(a.cfg.ScrapeDelay):
			case <-ctx.Done():
				return kept, ctx.Err()
			}
		}
	}

	logger.Info("News aggregation complete", zap.Int("kept", kept))
	return kept, nil
}

func (a *Aggregator) processItem(ctx context.Context, item FeedItem) (bool, error) {
	content, err := a.scraper.ScrapeArticle(ctx, item.URL)
	if err != nil {
		return false, fmt.Errorf("failed to scrape: %w", err)
	}
	if content == "" {
		return false, fmt.Errorf("no article text extracted")
	}

	score, err := a.scorer.ScoreArticle(ctx, item.Title, content)
	if err != nil {
		return false, fmt.Errorf("failed to score: %w", err)
	}

	if score.Score < a.cfg.MinScore {
		logger.Debug("Article below relevance threshold",
			zap.String("title", item.Title),
			zap.Float64("score", score.Score),
		)
		metrics.ArticlesScored.WithLabelValues("rejected").Inc()
		return false, nil
	}

	article := &models.NewsArticle{
		ID:          uuid.NewString(),
		URL:         item.URL,
		Title:       item.Title,
		Source:      item.Source,
		Summary:     score.Summary,
		Content:     content,
		Score:       score.Score,
		PublishedAt: item.PublishedAt,
	}
	if err := a.store.UpsertArticle(ctx, article); err != nil {
		return false, fmt.Errorf("failed to store: %w", err)
	}

	metrics.ArticlesScored.WithLabelValues("kept").Inc()
	return true, nil
}

// dedupe drops items whose URL is already stored and, within the batch,
// items whose normalized title was already seen. Outlets syndicate wire
// copy, so the same story often arrives under several URLs.
func dedupe(items []FeedItem, knownURLs map[string]bool) []FeedItem {
	seenTitles := make(map[string]bool)
	var out []FeedItem
	for _, item := range items {
		if knownURLs[item.URL] {
			continue
		}
		key := normalizeTitle(item.Title)
		if key == "" || seenTitles[key] {
			continue
		}
		seenTitles[key] = true
		out = append(out, item)
	}
	return out
}

func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
