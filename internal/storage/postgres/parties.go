package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/glaspolitics/backend/internal/storage/models"
	"github.com/glaspolitics/backend/pkg/logger"
)

func (c *Client) UpsertPartyPerformance(ctx context.Context, p *models.PartyPerformance) error {
	query := `
		INSERT INTO party_performance_scores (party, color, member_count, overall, transparency, effectiveness, integrity, consistency, service, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (party) DO UPDATE SET
			color = EXCLUDED.color,
			member_count = EXCLUDED.member_count,
			overall = EXCLUDED.overall,
			transparency = EXCLUDED.transparency,
			effectiveness = EXCLUDED.effectiveness,
			integrity = EXCLUDED.integrity,
			consistency = EXCLUDED.consistency,
			service = EXCLUDED.service,
			updated_at = NOW()
	`

	_, err := c.pool.Exec(ctx, query,
		p.Party, p.Color, p.MemberCount,
		p.Overall, p.Transparency, p.Effectiveness, p.Integrity, p.Consistency, p.Service,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert party performance: %w", err)
	}

	logger.Debug("Party performance upserted",
		zap.String("party", p.Party),
		zap.Float64("overall", p.Overall),
		zap.Int("members", p.MemberCount),
	)
	return nil
}

func (c *Client) ListPartyPerformance(ctx context.Context) ([]models.PartyPerformance, error) {
	query := `
		SELECT party, color, member_count, overall, transparency, effectiveness, integrity, consistency, service, updated_at
		FROM party_performance_scores
		ORDER BY overall DESC
	`

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list party performance: %w", err)
	}
	defer rows.Close()

	var parties []models.PartyPerformance
	for rows.Next() {
		var p models.PartyPerformance
		if err := rows.Scan(&p.Party, &p.Color, &p.MemberCount, &p.Overall, &p.Transparency, &p.Effectiveness, &p.Integrity, &p.Consistency, &p.Service, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan party row: %w", err)
		}
		parties = append(parties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate party rows: %w", err)
	}

	return parties, nil
}
