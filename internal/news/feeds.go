package news

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/glaspolitics/backend/internal/storage/models"
	"github.com/glaspolitics/backend/pkg/logger"
)

// defaultSources are the Irish outlets seeded on first run. Sources can be
// disabled in the database without redeploying.
var defaultSources = map[string]string{
	"RTE News":         "https://www.rte.ie/feeds/rss/?index=/news/politics/",
	"The Irish Times":  "https://www.irishtimes.com/arc/outboundfeeds/feed-irish-politics/",
	"Irish Examiner":   "https://www.irishexaminer.com/feed/35-politics.xml",
	"TheJournal.ie":    "https://www.thejournal.ie/feed/politics/",
	"Breaking News IE": "https://feeds.breakingnews.ie/bnireland",
}

// FeedItem is a candidate article pulled from a source feed, before
// scraping and scoring.
type FeedItem struct {
	URL         string
	Title       string
	Source      string
	PublishedAt time.Time
}

type FeedFetcher struct {
	parser *gofeed.Parser
}

func NewFeedFetcher() *FeedFetcher {
	parser := gofeed.NewParser()
	parser.UserAgent = "GlasPolitics/1.0 (news aggregator)"
	return &FeedFetcher{parser: parser}
}

// Fetch pulls every enabled source's feed and returns items newer than
// cutoff, oldest first. A broken feed is logged and skipped so one outlet
// cannot take down the whole run.
func (f *FeedFetcher) Fetch(ctx context.Context, sources []models.NewsSource, cutoff time.Time) []FeedItem {
	var items []FeedItem
	for _, source := range sources {
		feed, err := f.parser.ParseURLWithContext(source.FeedURL, ctx)
		if err != nil {
			logger.Warn("Failed to fetch feed",
				zap.String("source", source.Name),
				zap.String("url", source.FeedURL),
				zap.Error(err),
			)
			continue
		}

		fetched := 0
		for _, entry := range feed.Items {
			item, ok := toFeedItem(source.Name, entry, cutoff)
			if !ok {
				continue
			}
			items = append(items, item)
			fetched++
		}

		logger.Debug("Feed fetched",
			zap.String("source", source.Name),
			zap.Int("items", fetched),
		)
	}

	sortByPublished(items)
	return items
}

func toFeedItem(sourceName string, entry *gofeed.Item, cutoff time.Time) (FeedItem, bool) {
	if entry.Link == "" || strings.TrimSpace(entry.Title) == "" {
		return FeedItem{}, false
	}

	published := time.Now()
	if entry.PublishedParsed != nil {
		published = *entry.PublishedParsed
	} else if entry.UpdatedParsed != nil {
		published = *entry.UpdatedParsed
	}
	if published.Before(cutoff) {
		return FeedItem{}, false
	}

	return FeedItem{
		URL:         entry.Link,
		Title:       strings.TrimSpace(entry.Title),
		Source:      sourceName,
		PublishedAt: published,
	}, true
}

func sortByPublished(items []FeedItem) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].PublishedAt.Before(items[j].PublishedAt)
	})
}

// SeedDefaultSources inserts the built-in outlets if they are not already
// present.
func SeedDefaultSources(ctx context.Context, store SourceSeeder) error {
	for name, feedURL := range defaultSources {
		if err := store.SeedSource(ctx, name, feedURL); err != nil {
			return fmt.Errorf("failed to seed source %s: %w", name, err)
		}
	}
	return nil
}

type SourceSeeder interface {
	SeedSource(ctx context.Context, name, feedURL string) error
}
