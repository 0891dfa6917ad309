package oireachtas

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

	"github.com/glaspolitics/backend/pkg/circuitbreaker"
	"github.com/glaspolitics/backend/pkg/logger"
	"github.com/glaspolitics/backend/pkg/retry"
)

// Client wraps the Oireachtas Open Data API. All list endpoints paginate
// with skip/limit; a configurable delay between pages keeps the ingestion
// jobs under the API's informal rate limit.
type Client struct {
	baseURL     string
	pageSize    int
	pageDelay   time.Duration
	httpClient  *http.Client
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

func NewClient(baseURL string, pageSize, requestDelayMS int) *Client {
	cb := circuitbreaker.New("oireachtas", circuitbreaker.Config{
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:    3,
		InitialDelay:   time.Second,
		MaxDelay:       15 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	return &Client{
		baseURL:     baseURL,
		pageSize:    pageSize,
		pageDelay:   time.Duration(requestDelayMS) * time.Millisecond,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		cb:          cb,
		retryConfig: retryConfig,
	}
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	return c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Permanent(fmt.Errorf("failed to create request: %w", err))
			}
			req.Header.Set("Accept", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("failed to call oireachtas api: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return fmt.Errorf("oireachtas api returned status %d", resp.StatusCode)
			}
			if resp.StatusCode != http.StatusOK {
				return retry.Permanent(fmt.Errorf("oireachtas api returned status %d", resp.StatusCode))
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
	})
}

func (c *Client) sleepBetweenPages(ctx context.Context) error {
	if c.pageDelay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.pageDelay):
		return nil
	}
}

// FetchMembers pages through /members for the given chamber and house.
func (c *Client) FetchMembers(ctx context.Context, chamberID string, houseNo int) ([]Member, error) {
	var members []Member
	skip := 0

	for {
		params := url.Values{}
		params.Set("chamber_id", chamberID)
		params.Set("house_no", strconv.Itoa(houseNo))
		params.Set("limit", strconv.Itoa(c.pageSize))
		params.Set("skip", strconv.Itoa(skip))

		var page membersResponse
		if err := c.getJSON(ctx, "/members", params, &page); err != nil {
			return nil, fmt.Errorf("failed to fetch members page at skip %d: %w", skip, err)
		}

		for _, r := range page.Results {
			members = append(members, r.Member)
		}

		logger.Info("Fetched members page",
			zap.Int("skip", skip),
			zap.Int("page_results", len(page.Results)),
			zap.Int("total", len(members)),
		)

		skip += c.pageSize
		if len(page.Results) < c.pageSize || skip >= page.Head.Counts.ResultCount {
			break
		}
		if err := c.sleepBetweenPages(ctx); err != nil {
			return nil, err
		}
	}

	return members, nil
}

// FetchDivisions pages through /divisions for votes on or after the given date.
func (c *Client) FetchDivisions(ctx context.Context, chamberID string, since time.Time) ([]Division, error) {
	var divisions []Division
	skip := 0

	for {
		params := url.Values{}
		params.Set("chamber_type", "house")
		params.Set("chamber_id", chamberID)
		params.Set("date_start", since.Format("2006-01-02"))
		params.Set("limit", strconv.Itoa(c.pageSize))
		params.Set("skip", strconv.Itoa(skip))

		var page divisionsResponse
		if err := c.getJSON(ctx, "/divisions", params, &page); err != nil {
			return nil, fmt.Errorf("failed to fetch divisions page at skip %d: %w", skip, err)
		}

		for _, r := range page.Results {
			divisions = append(divisions, r.Division)
		}

		logger.Info("Fetched divisions page",
			zap.Int("skip", skip),
			zap.Int("page_results", len(page.Results)),
		)

		skip += c.pageSize
		if len(page.Results) < c.pageSize || skip >= page.Head.Counts.ResultCount {
			break
		}
		if err := c.sleepBetweenPages(ctx); err != nil {
			return nil, err
		}
	}

	return divisions, nil
}

// FetchQuestions pages through /questions for questions tabled on or after
// the given date.
func (c *Client) FetchQuestions(ctx context.Context, since time.Time) ([]Question, error) {
	var questions []Question
	skip := 0

	for {
		params := url.Values{}
		params.Set("date_start", since.Format("2006-01-02"))
		params.Set("limit", strconv.Itoa(c.pageSize))
		params.Set("skip", strconv.Itoa(skip))

		var page questionsResponse
		if err := c.getJSON(ctx, "/questions", params, &page); err != nil {
			return nil, fmt.Errorf("failed to fetch questions page at skip %d: %w", skip, err)
		}

		for _, r := range page.Results {
			questions = append(questions, r.Question)
		}

		logger.Info("Fetched questions page",
			zap.Int("skip", skip),
			zap.Int("page_results", len(page.Results)),
		)

		skip += c.pageSize
		if len(page.Results) < c.pageSize || skip >= page.Head.Counts.ResultCount {
			break
		}
		if err := c.sleepBetweenPages(ctx); err != nil {
			return nil, err
		}
	}

	return questions, nil
}

// FetchBills pages through /legislation for bills updated on or after the
// given date.
func (c *Client) FetchBills(ctx context.Context, since time.Time) ([]Bill, error) {
	var bills []Bill
	skip := 0

	for {
		params := url.Values{}
		params.Set("date_start", since.Format("2006-01-02"))
		params.Set("limit", strconv.Itoa(c.pageSize))
		params.Set("skip", strconv.Itoa(skip))

		var page legislationResponse
		if err := c.getJSON(ctx, "/legislation", params, &page); err != nil {
			return nil, fmt.Errorf("failed to fetch legislation page at skip %d: %w", skip, err)
		}

		for _, r := range page.Results {
			bills = append(bills, r.Bill)
		}

		logger.Info("Fetched legislation page",
			zap.Int("skip", skip),
			zap.Int("page_results", len(page.Results)),
		)

		skip += c.pageSize
		if len(page.Results) < c.pageSize || skip >= page.Head.Counts.ResultCount {
			break
		}
		if err := c.sleepBetweenPages(ctx); err != nil {
			return nil, err
		}
	}

	return bills, nil
}

// FetchDebateRecords pages through /debates between the given dates.
func (c *Client) FetchDebateRecords(ctx context.Context, chamberID string, dateStart, dateEnd time.Time) ([]DebateRecord, error) {
	var records []DebateRecord
	skip := 0

	for {
		params := url.Values{}
		params.Set("chamber_type", "house")
		params.Set("chamber_id", chamberID)
		params.Set("date_start", dateStart.Format("2006-01-02"))
		params.Set("date_end", dateEnd.Format("2006-01-02"))
		params.Set("limit", strconv.Itoa(c.pageSize))
		params.Set("skip", strconv.Itoa(skip))

		var page debatesResponse
		if err := c.getJSON(ctx, "/debates", params, &page); err != nil {
			return nil, fmt.Errorf("failed to fetch debates page at skip %d: %w", skip, err)
		}

		for _, r := range page.Results {
			records = append(records, r.DebateRecord)
		}

		logger.Info("Fetched debates page",
			zap.Int("skip", skip),
			zap.Int("page_results", len(page.Results)),
		)

		skip += c.pageSize
		if len(page.Results) < c.pageSize || skip >= page.Head.Counts.ResultCount {
			break
		}
		if err := c.sleepBetweenPages(ctx); err != nil {
			return nil, err
		}
	}

	return records, nil
}

// FetchSectionContent downloads the transcript document for a debate section.
func (c *Client) FetchSectionContent(ctx context.Context, uri string) (string, error) {
	var content string

	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
			if err != nil {
				return retry.Permanent(fmt.Errorf("failed to create request: %w", err))
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("failed to fetch section content: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
					return fmt.Errorf("section content returned status %d", resp.StatusCode)
				}
				return retry.Permanent(fmt.Errorf("section content returned status %d", resp.StatusCode))
			}

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("failed to read section content: %w", err)
			}

			content = string(body)
			return nil
		})
	})

	if err != nil {
		return "", err
	}
	return content, nil
}
