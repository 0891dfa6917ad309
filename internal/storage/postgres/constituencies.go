package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/glaspolitics/backend/internal/storage/models"
	"github.com/glaspolitics/backend/pkg/logger"
)

func (c *Client) UpsertConstituency(ctx context.Context, con *models.Constituency) error {
	shares, err := json.Marshal(con.VoteShares)
	if err != nil {
		return fmt.Errorf("failed to marshal vote shares: %w", err)
	}

	query := `
		INSERT INTO constituencies (name, seat_count, vote_shares, boundary, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (name) DO UPDATE SET
			seat_count = EXCLUDED.seat_count,
			vote_shares = EXCLUDED.vote_shares,
			boundary = EXCLUDED.boundary,
			updated_at = NOW()
	`

	if _, err := c.pool.Exec(ctx, query, con.Name, con.SeatCount, shares, con.BoundaryGeoJSON); err != nil {
		return fmt.Errorf("failed to upsert constituency: %w", err)
	}

	logger.Debug("Constituency upserted", zap.String("name", con.Name), zap.Int("seats", con.SeatCount))
	return nil
}

func (c *Client) ListConstituencies(ctx context.Context) ([]models.Constituency, error) {
	query := `SELECT name, seat_count, vote_shares, boundary, created_at, updated_at FROM constituencies ORDER BY name`

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list constituencies: %w", err)
	}
	defer rows.Close()

	var cons []models.Constituency
	for rows.Next() {
		var con models.Constituency
		var shares []byte
		if err := rows.Scan(&con.Name, &con.SeatCount, &shares, &con.BoundaryGeoJSON, &con.CreatedAt, &con.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan constituency row: %w", err)
		}
		if err := json.Unmarshal(shares, &con.VoteShares); err != nil {
			return nil, fmt.Errorf("failed to unmarshal vote shares: %w", err)
		}
		cons = append(cons, con)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate constituency rows: %w", err)
	}

	return cons, nil
}
