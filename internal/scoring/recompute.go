package scoring

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/glaspolitics/backend/internal/metrics"
	"github.com/glaspolitics/backend/internal/storage/models"
	"github.com/glaspolitics/backend/internal/storage/postgres"
	"github.com/glaspolitics/backend/pkg/logger"
)

type Store interface {
	ListTDs(ctx context.Context, activeOnly bool) ([]models.TDScore, error)
	VoteStatsByMember(ctx context.Context, since time.Time) (map[string]postgres.VoteStats, error)
	SpeechStatsByMember(ctx context.Context, since time.Time) (map[string]postgres.SpeechStats, error)
	TopicCountsByMember(ctx context.Context, since time.Time) (map[string]int, error)
	UpsertDebateMetrics(ctx context.Context, m *models.TDDebateMetrics) error
	UpdateTDActivity(ctx context.Context, memberCode string, questionsAsked, billsSponsored, votesCast, votesEligible, speechCount int) error
	UpdateTDScores(ctx context.Context, td *models.TDScore) error
}

// Recomputer is the weekly scoring job: it derives per-TD debate metrics
// for the period and rewrites every active TD's scorecard.
type Recomputer struct {
	store Store
}

func NewRecomputer(store Store) *Recomputer {
	return &Recomputer{store: store}
}

func (r *Recomputer) Run(ctx context.Context, periodStart, periodEnd time.Time) (int, error) {
	started := time.Now()
	defer func() {
		metrics.ScoreRecomputeDuration.Observe(time.Since(started).Seconds())
	}()

	tds, err := r.store.ListTDs(ctx, true)
	if err != nil {
		return 0, fmt.Errorf("failed to list tds: %w", err)
	}

	voteStats, err := r.store.VoteStatsByMember(ctx, periodStart)
	if err != nil {
		return 0, fmt.Errorf("failed to load vote stats: %w", err)
	}

	speechStats, err := r.store.SpeechStatsByMember(ctx, periodStart)
	if err != nil {
		return 0, fmt.Errorf("failed to load speech stats: %w", err)
	}

	topicCounts, err := r.store.TopicCountsByMember(ctx, periodStart)
	if err != nil {
		return 0, fmt.Errorf("failed to load topic counts: %w", err)
	}

	logger.Info("Recomputing TD scores",
		zap.Int("tds", len(tds)),
		zap.Time("period_start", periodStart),
		zap.Time("period_end", periodEnd),
	)

	rescored := 0
	for _, td := range tds {
		votes := voteStats[td.MemberCode]
		speeches := speechStats[td.MemberCode]
		topics := topicCounts[td.MemberCode]

		debateMetrics := &models.TDDebateMetrics{
			MemberCode:  td.MemberCode,
			PeriodStart: periodStart,
			PeriodEnd:   periodEnd,
			SpeechCount: speeches.SpeechCount,
			WordCount:   speeches.WordCount,
			DebateCount: speeches.DebateCount,
			TopicCount:  topics,
		}
		if err := r.store.UpsertDebateMetrics(ctx, debateMetrics); err != nil {
			return rescored, fmt.Errorf("failed to store debate metrics for %s: %w", td.MemberCode, err)
		}

		stats := ActivityStats{
			QuestionsAsked: td.QuestionsAsked,
			BillsSponsored: td.BillsSponsored,
			VotesCast:      votes.Cast,
			VotesEligible:  votes.Eligible,
			SpeechCount:    speeches.SpeechCount,
			WordCount:      speeches.WordCount,
			DebateCount:    speeches.DebateCount,
			TopicCount:     topics,
		}

		scores := ComputeScores(stats)

		if err := r.store.UpdateTDActivity(ctx, td.MemberCode,
			td.QuestionsAsked, td.BillsSponsored,
			votes.Cast, votes.Eligible, speeches.SpeechCount); err != nil {
			return rescored, fmt.Errorf("failed to update activity for %s: %w", td.MemberCode, err)
		}

		updated := td
		updated.Overall = scores.Overall
		updated.Transparency = scores.Transparency
		updated.Effectiveness = scores.Effectiveness
		updated.Integrity = scores.Integrity
		updated.Consistency = scores.Consistency
		updated.Service = scores.Service

		if err := r.store.UpdateTDScores(ctx, &updated); err != nil {
			return rescored, fmt.Errorf("failed to update scores for %s: %w", td.MemberCode, err)
		}

		metrics.TDsScored.Inc()
		rescored++
	}

	logger.Info("TD scores recomputed", zap.Int("rescored", rescored))
	return rescored, nil
}
