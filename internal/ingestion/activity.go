package ingestion

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/glaspolitics/backend/internal/metrics"
	"github.com/glaspolitics/backend/internal/oireachtas"
	"github.com/glaspolitics/backend/internal/storage/models"
	"github.com/glaspolitics/backend/pkg/logger"
)

type ActivityStore interface {
	ListTDs(ctx context.Context, activeOnly bool) ([]models.TDScore, error)
	UpdateTDEngagement(ctx context.Context, memberCode string, questionsAsked, billsSponsored int) error
}

type ActivityFetcher interface {
	FetchQuestions(ctx context.Context, since time.Time) ([]oireachtas.Question, error)
	FetchBills(ctx context.Context, since time.Time) ([]oireachtas.Bill, error)
}

// ActivityProcessor refreshes per-member question and bill-sponsorship
// counters from the questions and legislation endpoints.
type ActivityProcessor struct {
	store  ActivityStore
	client ActivityFetcher
}

func NewActivityProcessor(store ActivityStore, client ActivityFetcher) *ActivityProcessor {
	return &ActivityProcessor{store: store, client: client}
}

// Run recounts questions asked and bills sponsored since the given time and
// writes the counters for every active TD. TDs with no activity in the window
// are written as zero so a shrinking window never leaves stale counts behind.
func (p *ActivityProcessor) Run(ctx context.Context, since time.Time) (int, error) {
	questions, err := p.client.FetchQuestions(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch questions: %w", err)
	}

	bills, err := p.client.FetchBills(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch bills: %w", err)
	}

	logger.Info("Fetched activity",
		zap.Int("questions", len(questions)),
		zap.Int("bills", len(bills)),
	)

	questionCounts := make(map[string]int)
	for _, q := range questions {
		if code := q.By.MemberCode(); code != "" {
			questionCounts[code]++
		}
	}

	billCounts := make(map[string]int)
	for _, b := range bills {
		for _, code := range b.SponsorCodes() {
			billCounts[code]++
		}
	}

	tds, err := p.store.ListTDs(ctx, true)
	if err != nil {
		return 0, fmt.Errorf("failed to list tds: %w", err)
	}

	updated := 0
	for _, td := range tds {
		err := p.store.UpdateTDEngagement(ctx, td.MemberCode, questionCounts[td.MemberCode], billCounts[td.MemberCode])
		if err != nil {
			metrics.IngestRows.WithLabelValues("activity", "error").Inc()
			return updated, fmt.Errorf("failed to update engagement for %s: %w", td.MemberCode, err)
		}
		metrics.IngestRows.WithLabelValues("activity", "ok").Inc()
		updated++
	}

	logger.Info("Activity ingested", zap.Int("updated", updated))
	return updated, nil
}
