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

type VoteStore interface {
	UpsertVote(ctx context.Context, vote *models.TDVote) error
}

type DivisionFetcher interface {
	FetchDivisions(ctx context.Context, chamberID string, since time.Time) ([]oireachtas.Division, error)
}

type VoteProcessor struct {
	store     VoteStore
	client    DivisionFetcher
	chamberID string
}

func NewVoteProcessor(store VoteStore, client DivisionFetcher, chamberID string) *VoteProcessor {
	return &VoteProcessor{store: store, client: client, chamberID: chamberID}
}

func (p *VoteProcessor) Run(ctx context.Context, since time.Time) (int, error) {
	divisions, err := p.client.FetchDivisions(ctx, p.chamberID, since)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch divisions: %w", err)
	}

	logger.Info("Fetched divisions", zap.Int("count", len(divisions)))

	upserted := 0
	for _, d := range divisions {
		votedAt, err := time.Parse("2006-01-02", d.Date)
		if err != nil {
			logger.Warn("Skipping division with bad date",
				zap.String("vote_id", d.VoteID),
				zap.String("date", d.Date),
			)
			metrics.IngestRows.WithLabelValues("vote", "skipped").Inc()
			continue
		}

		for _, ballot := range d.Ballots() {
			vote := &models.TDVote{
				DivisionID: d.VoteID,
				MemberCode: ballot.MemberCode,
				Subject:    d.Subject.ShowAs,
				VotedAs:    ballot.VotedAs,
				Chamber:    p.chamberID,
				VotedAt:    votedAt,
			}

			if err := p.store.UpsertVote(ctx, vote); err != nil {
				metrics.IngestRows.WithLabelValues("vote", "error").Inc()
				return upserted, fmt.Errorf("failed to upsert vote %s/%s: %w", d.VoteID, ballot.MemberCode, err)
			}

			metrics.IngestRows.WithLabelValues("vote", "ok").Inc()
			upserted++
		}
	}

	logger.Info("Votes ingested", zap.Int("upserted", upserted))
	return upserted, nil
}
