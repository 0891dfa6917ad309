package news

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glaspolitics/backend/internal/storage/models"
)

func rssDocument(items string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Politics</title>%s</channel></rss>`, items)
}

func TestFeedFetcherFiltersByCutoff(t *testing.T) {
	recent := time.Now().Add(-2 * time.Hour).Format(time.RFC1123Z)
	stale := time.Now().AddDate(0, 0, -30).Format(time.RFC1123Z)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, rssDocument(fmt.Sprintf(`
			<item><title>Fresh story</title><link>http://example.com/fresh</link><pubDate>%s</pubDate></item>
			<item><title>Old story</title><link>http://example.com/old</link><pubDate>%s</pubDate></item>
			<item><title></title><link>http://example.com/untitled</link><pubDate>%s</pubDate></item>
		`, recent, stale, recent)))
	}))
	defer srv.Close()

	sources := []models.NewsSource{{Name: "Test Outlet", FeedURL: srv.URL}}
	cutoff := time.Now().AddDate(0, 0, -7)

	items := NewFeedFetcher().Fetch(context.Background(), sources, cutoff)
	if len(items) != 1 {
		t.Fatalf("fetched %d items, want 1: %+v", len(items), items)
	}
	if items[0].Title != "Fresh story" || items[0].Source != "Test Outlet" {
		t.Errorf("unexpected item: %+v", items[0])
	}
}

func TestFeedFetcherSkipsBrokenFeed(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, rssDocument(fmt.Sprintf(
			`<item><title>Survivor</title><link>http://example.com/s</link><pubDate>%s</pubDate></item>`,
			time.Now().Format(time.RFC1123Z))))
	}))
	defer working.Close()

	sources := []models.NewsSource{
		{Name: "Broken", FeedURL: broken.URL},
		{Name: "Working", FeedURL: working.URL},
	}

	items := NewFeedFetcher().Fetch(context.Background(), sources, time.Now().AddDate(0, 0, -1))
	if len(items) != 1 || items[0].Title != "Survivor" {
		t.Fatalf("expected one item from the working feed, got %+v", items)
	}
}

func TestFetchOrdersOldestFirst(t *testing.T) {
	now := time.Now()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, rssDocument(fmt.Sprintf(`
			<item><title>Newest</title><link>http://example.com/n</link><pubDate>%s</pubDate></item>
			<item><title>Oldest</title><link>http://example.com/o</link><pubDate>%s</pubDate></item>
		`, now.Format(time.RFC1123Z), now.Add(-5*time.Hour).Format(time.RFC1123Z))))
	}))
	defer srv.Close()

	items := NewFeedFetcher().Fetch(context.Background(),
		[]models.NewsSource{{Name: "Outlet", FeedURL: srv.URL}},
		now.AddDate(0, 0, -1))

	if len(items) != 2 {
		t.Fatalf("fetched %d items, want 2", len(items))
	}
	if items[0].Title != "Oldest" {
		t.Errorf("first item = %q, want Oldest", items[0].Title)
	}
}

func TestScrapeArticleExtractsParagraphs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><head><style>p{}</style></head><body>
			<nav>Menu</nav>
			<article><p>First   paragraph.</p><p>Second paragraph.</p></article>
			<footer>Footer text</footer>
		</body></html>`)
	}))
	defer srv.Close()

	text, err := NewScraper().ScrapeArticle(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("ScrapeArticle failed: %v", err)
	}
	if text != "First paragraph.\n\nSecond paragraph." {
		t.Errorf("scraped text = %q", text)
	}
}

func TestScrapeArticleNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := NewScraper().ScrapeArticle(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 404 page")
	}
}
