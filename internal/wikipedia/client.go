package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/glaspolitics/backend/pkg/logger"
	"github.com/glaspolitics/backend/pkg/retry"
)

// Client looks up politician pages and portrait thumbnails via the MediaWiki
// action API. A missing page or image is a miss, not an error: enrichment
// jobs continue to the next TD.
type Client struct {
	baseURL       string
	thumbnailSize int
	httpClient    *http.Client
	retryConfig   retry.Config
}

type PageImage struct {
	Title        string
	ThumbnailURL string
}

func NewClient(baseURL string, thumbnailSize int) *Client {
	return &Client{
		baseURL:       baseURL,
		thumbnailSize: thumbnailSize,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
		retryConfig: retry.Config{
			MaxAttempts:    3,
			InitialDelay:   500 * time.Millisecond,
			MaxDelay:       5 * time.Second,
			Multiplier:     2.0,
			JitterFraction: 0.1,
			Logger:         logger.GetLogger(),
		},
	}
}

func (c *Client) getJSON(ctx context.Context, params url.Values, out any) error {
	params.Set("format", "json")
	endpoint := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	return retry.Do(ctx, c.retryConfig, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return retry.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("User-Agent", "glas-politics/1.0 (civic accountability aggregator)")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to call wikipedia api: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
				return fmt.Errorf("wikipedia api returned status %d", resp.StatusCode)
			}
			return retry.Permanent(fmt.Errorf("wikipedia api returned status %d", resp.StatusCode))
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if err := json.Unmarshal(body, out); err != nil {
			return retry.Permanent(fmt.Errorf("failed to parse response: %w", err))
		}
		return nil
	})
}

// SearchPage finds the best-matching page title for a politician name.
// Returns "" when nothing matches.
func (c *Client) SearchPage(ctx context.Context, name string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", name+" Irish politician")
	params.Set("srlimit", "1")

	var result struct {
		Query struct {
			Search []struct {
				Title string `json:"title"`
			} `json:"search"`
		} `json:"query"`
	}

	if err := c.getJSON(ctx, params, &result); err != nil {
		return "", fmt.Errorf("failed to search wikipedia: %w", err)
	}

	if len(result.Query.Search) == 0 {
		logger.Debug("No wikipedia page found", zap.String("name", name))
		return "", nil
	}

	return result.Query.Search[0].Title, nil
}

// FetchThumbnail returns the page's lead image thumbnail, or a zero
// PageImage when the page carries none.
func (c *Client) FetchThumbnail(ctx context.Context, pageTitle string) (PageImage, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("titles", pageTitle)
	params.Set("prop", "pageimages")
	params.Set("pithumbsize", strconv.Itoa(c.thumbnailSize))

	var result struct {
		Query struct {
			Pages map[string]struct {
				Title     string `json:"title"`
				Thumbnail struct {
					Source string `json:"source"`
				} `json:"thumbnail"`
			} `json:"pages"`
		} `json:"query"`
	}

	if err := c.getJSON(ctx, params, &result); err != nil {
		return PageImage{}, fmt.Errorf("failed to fetch thumbnail: %w", err)
	}

	for _, page := range result.Query.Pages {
		if page.Thumbnail.Source != "" {
			return PageImage{Title: page.Title, ThumbnailURL: page.Thumbnail.Source}, nil
		}
	}

	logger.Debug("No thumbnail on wikipedia page", zap.String("title", pageTitle))
	return PageImage{}, nil
}

// LookupPortrait combines search and thumbnail retrieval for one name.
func (c *Client) LookupPortrait(ctx context.Context, name string) (PageImage, error) {
	title, err := c.SearchPage(ctx, name)
	if err != nil {
		return PageImage{}, err
	}
	if title == "" {
		return PageImage{}, nil
	}
	return c.FetchThumbnail(ctx, title)
}
