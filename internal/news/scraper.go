package news

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const maxScrapedChars = 6000

var scrapeWhitespaceRE = regexp.MustCompile(`\s+`)

type Scraper struct {
	httpClient *http.Client
}

func NewScraper() *Scraper {
	return &Scraper{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ScrapeArticle fetches an article page and extracts its body text.
// Article markup and paragraph tags are preferred; when a page has neither,
// the stripped body text is used so paywalled or unusual layouts still
// yield something to score.
func (s *Scraper) ScrapeArticle(ctx context.Context, articleURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; GlasPolitics/1.0)")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("article fetch returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, nav, footer, header, aside, form, figure").Remove()

	var paragraphs []string
	doc.Find("article p").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) == 0 {
		doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
			if text := strings.TrimSpace(sel.Text()); text != "" {
				paragraphs = append(paragraphs, text)
			}
		})
	}

	for i, p := range paragraphs {
		paragraphs[i] = scrapeWhitespaceRE.ReplaceAllString(p, " ")
	}
	text := strings.Join(paragraphs, "\n\n")
	if text == "" {
		text = strings.TrimSpace(scrapeWhitespaceRE.ReplaceAllString(doc.Find("body").Text(), " "))
	}

	if len(text) > maxScrapedChars {
		text = text[:maxScrapedChars]
	}
	return text, nil
}
