package ingestion

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/glaspolitics/backend/internal/metrics"
	"github.com/glaspolitics/backend/internal/oireachtas"
	"github.com/glaspolitics/backend/internal/storage/models"
	"github.com/glaspolitics/backend/pkg/logger"
)

type MemberStore interface {
	UpsertTD(ctx context.Context, td *models.TDScore) error
}

type MemberFetcher interface {
	FetchMembers(ctx context.Context, chamberID string, houseNo int) ([]oireachtas.Member, error)
}

// MemberProcessor refreshes td_scores identity rows from the Oireachtas
// members feed. Running it twice is a no-op for unchanged members.
type MemberProcessor struct {
	store     MemberStore
	client    MemberFetcher
	chamberID string
	houseNo   int
}

func NewMemberProcessor(store MemberStore, client MemberFetcher, chamberID string, houseNo int) *MemberProcessor {
	return &MemberProcessor{
		store:     store,
		client:    client,
		chamberID: chamberID,
		houseNo:   houseNo,
	}
}

func (p *MemberProcessor) Run(ctx context.Context) (int, error) {
	members, err := p.client.FetchMembers(ctx, p.chamberID, p.houseNo)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch members: %w", err)
	}

	logger.Info("Fetched members", zap.Int("count", len(members)))

	upserted := 0
	for _, m := range members {
		if m.MemberCode == "" {
			logger.Warn("Skipping member without code", zap.String("name", m.FullName))
			metrics.IngestRows.WithLabelValues("member", "skipped").Inc()
			continue
		}

		td := &models.TDScore{
			MemberCode:   m.MemberCode,
			FullName:     m.FullName,
			Party:        m.CurrentParty(),
			Constituency: m.CurrentConstituency(),
			IsMinister:   m.HoldsOffice(),
			IsActive:     m.IsActive(),
		}

		if err := p.store.UpsertTD(ctx, td); err != nil {
			metrics.IngestRows.WithLabelValues("member", "error").Inc()
			return upserted, fmt.Errorf("failed to upsert member %s: %w", m.MemberCode, err)
		}

		metrics.IngestRows.WithLabelValues("member", "ok").Inc()
		upserted++
	}

	logger.Info("Members ingested", zap.Int("upserted", upserted))
	return upserted, nil
}
