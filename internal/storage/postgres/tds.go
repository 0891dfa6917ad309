package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/glaspolitics/backend/internal/storage/models"
	"github.com/glaspolitics/backend/pkg/logger"
)

// UpsertTD writes the identity fields of a TD row. Score columns are left
// untouched on conflict so that a membership refresh never resets ratings.
func (c *Client) UpsertTD(ctx context.Context, td *models.TDScore) error {
	query := `
		INSERT INTO td_scores (member_code, full_name, party, constituency, is_minister, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (member_code) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			party = EXCLUDED.party,
			constituency = EXCLUDED.constituency,
			is_minister = EXCLUDED.is_minister,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
	`

	_, err := c.pool.Exec(ctx, query,
		td.MemberCode,
		td.FullName,
		td.Party,
		td.Constituency,
		td.IsMinister,
		td.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert td: %w", err)
	}

	logger.Debug("TD upserted", zap.String("member_code", td.MemberCode), zap.String("party", td.Party))
	return nil
}

func (c *Client) UpdateTDImage(ctx context.Context, memberCode, imageURL, wikipediaTitle string) error {
	query := `
		UPDATE td_scores
		SET image_url = $2, wikipedia_title = $3, updated_at = NOW()
		WHERE member_code = $1
	`

	if _, err := c.pool.Exec(ctx, query, memberCode, imageURL, wikipediaTitle); err != nil {
		return fmt.Errorf("failed to update td image: %w", err)
	}
	return nil
}

// UpdateTDEngagement refreshes the question and bill counters written by the
// activity ingester. The remaining activity columns belong to the metrics job.
func (c *Client) UpdateTDEngagement(ctx context.Context, memberCode string, questionsAsked, billsSponsored int) error {
	query := `
		UPDATE td_scores
		SET questions_asked = $2,
			bills_sponsored = $3,
			updated_at = NOW()
		WHERE member_code = $1
	`

	if _, err := c.pool.Exec(ctx, query, memberCode, questionsAsked, billsSponsored); err != nil {
		return fmt.Errorf("failed to update td engagement: %w", err)
	}
	return nil
}

func (c *Client) UpdateTDActivity(ctx context.Context, memberCode string, questionsAsked, billsSponsored, votesCast, votesEligible, speechCount int) error {
	query := `
		UPDATE td_scores
		SET questions_asked = $2,
			bills_sponsored = $3,
			votes_cast = $4,
			votes_eligible = $5,
			speech_count = $6,
			updated_at = NOW()
		WHERE member_code = $1
	`

	_, err := c.pool.Exec(ctx, query, memberCode, questionsAsked, billsSponsored, votesCast, votesEligible, speechCount)
	if err != nil {
		return fmt.Errorf("failed to update td activity: %w", err)
	}
	return nil
}

func (c *Client) UpdateTDScores(ctx context.Context, td *models.TDScore) error {
	query := `
		UPDATE td_scores
		SET overall = $2,
			transparency = $3,
			effectiveness = $4,
			integrity = $5,
			consistency = $6,
			service = $7,
			updated_at = NOW()
		WHERE member_code = $1
	`

	_, err := c.pool.Exec(ctx, query,
		td.MemberCode,
		td.Overall,
		td.Transparency,
		td.Effectiveness,
		td.Integrity,
		td.Consistency,
		td.Service,
	)
	if err != nil {
		return fmt.Errorf("failed to update td scores: %w", err)
	}

	logger.Debug("TD scores updated",
		zap.String("member_code", td.MemberCode),
		zap.Float64("overall", td.Overall),
	)
	return nil
}

const tdColumns = `member_code, full_name, party, constituency, image_url, wikipedia_title,
		is_minister, is_active,
		overall, transparency, effectiveness, integrity, consistency, service,
		questions_asked, bills_sponsored, votes_cast, votes_eligible, speech_count,
		created_at, updated_at`

func (c *Client) scanTD(row interface{ Scan(...any) error }) (*models.TDScore, error) {
	var td models.TDScore
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&td.MemberCode, &td.FullName, &td.Party, &td.Constituency, &td.ImageURL, &td.WikipediaTitle,
		&td.IsMinister, &td.IsActive,
		&td.Overall, &td.Transparency, &td.Effectiveness, &td.Integrity, &td.Consistency, &td.Service,
		&td.QuestionsAsked, &td.BillsSponsored, &td.VotesCast, &td.VotesEligible, &td.SpeechCount,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	td.CreatedAt = createdAt
	td.UpdatedAt = updatedAt
	return &td, nil
}

func (c *Client) GetTD(ctx context.Context, memberCode string) (*models.TDScore, error) {
	query := `SELECT ` + tdColumns + ` FROM td_scores WHERE member_code = $1`

	td, err := c.scanTD(c.pool.QueryRow(ctx, query, memberCode))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get td: %w", err)
	}
	return td, nil
}

func (c *Client) ListTDs(ctx context.Context, activeOnly bool) ([]models.TDScore, error) {
	query := `SELECT ` + tdColumns + ` FROM td_scores`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY overall DESC`

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tds: %w", err)
	}
	defer rows.Close()

	var tds []models.TDScore
	for rows.Next() {
		td, err := c.scanTD(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan td row: %w", err)
		}
		tds = append(tds, *td)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate td rows: %w", err)
	}

	return tds, nil
}

func (c *Client) ListTDsByConstituency(ctx context.Context, constituency string) ([]models.TDScore, error) {
	query := `SELECT ` + tdColumns + ` FROM td_scores WHERE constituency = $1 AND is_active ORDER BY overall DESC`

	rows, err := c.pool.Query(ctx, query, constituency)
	if err != nil {
		return nil, fmt.Errorf("failed to list tds by constituency: %w", err)
	}
	defer rows.Close()

	var tds []models.TDScore
	for rows.Next() {
		td, err := c.scanTD(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan td row: %w", err)
		}
		tds = append(tds, *td)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate td rows: %w", err)
	}

	return tds, nil
}

// TDsMissingImages returns active TDs with no stored portrait, for the
// Wikipedia enrichment job.
func (c *Client) TDsMissingImages(ctx context.Context) ([]models.TDScore, error) {
	query := `SELECT ` + tdColumns + ` FROM td_scores WHERE is_active AND image_url = '' ORDER BY full_name`

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tds missing images: %w", err)
	}
	defer rows.Close()

	var tds []models.TDScore
	for rows.Next() {
		td, err := c.scanTD(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan td row: %w", err)
		}
		tds = append(tds, *td)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate td rows: %w", err)
	}

	return tds, nil
}
