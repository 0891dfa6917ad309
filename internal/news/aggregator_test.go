package news

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glaspolitics/backend/internal/llm"
	"github.com/glaspolitics/backend/internal/storage/models"
)

type fakeNewsStore struct {
	sources  []models.NewsSource
	known    map[string]bool
	articles []*models.NewsArticle
}

func (f *fakeNewsStore) ListEnabledSources(context.Context) ([]models.NewsSource, error) {
	return f.sources, nil
}

func (f *fakeNewsStore) KnownArticleURLs(context.Context, time.Time) (map[string]bool, error) {
	return f.known, nil
}

func (f *fakeNewsStore) UpsertArticle(_ context.Context, article *models.NewsArticle) error {
	f.articles = append(f.articles, article)
	return nil
}

type fakeFetcher struct {
	items []FeedItem
}

func (f *fakeFetcher) Fetch(context.Context, []models.NewsSource, time.Time) []FeedItem {
	return f.items
}

type fakeScraper struct {
	content map[string]string
}

func (f *fakeScraper) ScrapeArticle(_ context.Context, articleURL string) (string, error) {
	content, ok := f.content[articleURL]
	if !ok {
		return "", errors.New("fetch failed")
	}
	return content, nil
}

type fakeScorer struct {
	scores map[string]float64
}

func (f *fakeScorer) ScoreArticle(_ context.Context, title, _ string) (*llm.ArticleScore, error) {
	return &llm.ArticleScore{Score: f.scores[title], Summary: "summary of " + title}, nil
}

func TestAggregatorKeepsOnlyRelevantArticles(t *testing.T) {
	store := &fakeNewsStore{
		sources: []models.NewsSource{{Name: "RTE News", FeedURL: "http://example.com/rss"}},
	}
	fetcher := &fakeFetcher{items: []FeedItem{
		{URL: "http://example.com/housing", Title: "Dail passes housing bill", Source: "RTE News"},
		{URL: "http://example.com/gaa", Title: "GAA final preview", Source: "RTE News"},
		{URL: "http://example.com/broken", Title: "Budget vote tonight", Source: "RTE News"},
	}}
	scraper := &fakeScraper{content: map[string]string{
		"http://example.com/housing": "The Dail voted on the housing bill.",
		"http://example.com/gaa":     "Match preview.",
	}}
	scorer := &fakeScorer{scores: map[string]float64{
		"Dail passes housing bill": 9.0,
		"GAA final preview":        1.0,
	}}

	agg := NewAggregator(store, fetcher, scraper, scorer, Config{
		MaxAgeDays:  7,
		MaxArticles: 10,
		MinScore:    6.0,
	})

	kept, err := agg.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if kept != 1 {
		t.Errorf("kept %d articles, want 1", kept)
	}
	if len(store.articles) != 1 {
		t.Fatalf("stored %d articles, want 1", len(store.articles))
	}

	article := store.articles[0]
	if article.Title != "Dail passes housing bill" {
		t.Errorf("stored article title = %q", article.Title)
	}
	if article.Score != 9.0 {
		t.Errorf("stored article score = %f", article.Score)
	}
	if article.Summary == "" {
		t.Error("stored article has no summary")
	}
}

func TestAggregatorStopsAtMaxArticles(t *testing.T) {
	store := &fakeNewsStore{
		sources: []models.NewsSource{{Name: "RTE News", FeedURL: "http://example.com/rss"}},
	}
	items := []FeedItem{
		{URL: "http://example.com/1", Title: "Story one", Source: "RTE News"},
		{URL: "http://example.com/2", Title: "Story two", Source: "RTE News"},
		{URL: "http://example.com/3", Title: "Story three", Source: "RTE News"},
	}
	scraper := &fakeScraper{content: map[string]string{
		"http://example.com/1": "text", "http://example.com/2": "text", "http://example.com/3": "text",
	}}
	scorer := &fakeScorer{scores: map[string]float64{
		"Story one": 8, "Story two": 8, "Story three": 8,
	}}

	agg := NewAggregator(store, &fakeFetcher{items: items}, scraper, scorer, Config{
		MaxAgeDays:  7,
		MaxArticles: 2,
		MinScore:    6.0,
	})

	kept, err := agg.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if kept != 2 {
		t.Errorf("kept %d articles, want max 2", kept)
	}
}

func TestDedupe(t *testing.T) {
	items := []FeedItem{
		{URL: "http://a.com/1", Title: "Coalition agrees Budget 2027"},
		{URL: "http://b.com/1", Title: "Coalition Agrees budget 2027!"},
		{URL: "http://a.com/2", Title: "Already stored story"},
		{URL: "http://a.com/3", Title: "Fresh story"},
	}
	known := map[string]bool{"http://a.com/2": true}

	out := dedupe(items, known)
	if len(out) != 2 {
		t.Fatalf("dedupe kept %d items, want 2: %+v", len(out), out)
	}
	if out[0].URL != "http://a.com/1" || out[1].URL != "http://a.com/3" {
		t.Errorf("unexpected survivors: %+v", out)
	}
}

func TestNormalizeTitle(t *testing.T) {
	if normalizeTitle("Budget 2027") != normalizeTitle("BUDGET-2027!!") {
		t.Error("case and punctuation variants should normalize identically")
	}
	if normalizeTitle("Dáil row over housing") == "" {
		t.Error("accented title should still normalize to a nonempty key")
	}
}
