package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/glaspolitics/backend/internal/storage/models"
)

func (c *Client) UpsertVote(ctx context.Context, vote *models.TDVote) error {
	query := `
		INSERT INTO td_votes (division_id, member_code, subject, voted_as, chamber, voted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (division_id, member_code) DO UPDATE SET
			subject = EXCLUDED.subject,
			voted_as = EXCLUDED.voted_as
	`

	_, err := c.pool.Exec(ctx, query,
		vote.DivisionID,
		vote.MemberCode,
		vote.Subject,
		vote.VotedAs,
		vote.Chamber,
		vote.VotedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert vote: %w", err)
	}
	return nil
}

type VoteStats struct {
	Cast     int
	Eligible int
}

// VoteStatsByMember tallies division participation since the given time.
// Ballot rows only exist for members who voted, so eligibility is the
// count of divisions held in the member's chamber over the window.
func (c *Client) VoteStatsByMember(ctx context.Context, since time.Time) (map[string]VoteStats, error) {
	query := `
		WITH divisions AS (
			SELECT chamber, COUNT(DISTINCT division_id) AS total
			FROM td_votes
			WHERE voted_at >= $1
			GROUP BY chamber
		)
		SELECT v.member_code, COUNT(*) AS cast, MAX(d.total) AS eligible
		FROM td_votes v
		JOIN divisions d ON d.chamber = v.chamber
		WHERE v.voted_at >= $1
		GROUP BY v.member_code
	`

	rows, err := c.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query vote stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]VoteStats)
	for rows.Next() {
		var memberCode string
		var s VoteStats
		if err := rows.Scan(&memberCode, &s.Cast, &s.Eligible); err != nil {
			return nil, fmt.Errorf("failed to scan vote stats row: %w", err)
		}
		stats[memberCode] = s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vote stats rows: %w", err)
	}

	return stats, nil
}

func (c *Client) UpsertSpeech(ctx context.Context, speech *models.DebateSpeech) error {
	query := `
		INSERT INTO debate_speeches (section_id, speech_index, member_code, speaker_name, debate_title, chamber, text, word_count, spoke_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (section_id, speech_index) DO UPDATE SET
			member_code = EXCLUDED.member_code,
			speaker_name = EXCLUDED.speaker_name,
			text = EXCLUDED.text,
			word_count = EXCLUDED.word_count
	`

	wordCount := len(strings.Fields(speech.Text))

	_, err := c.pool.Exec(ctx, query,
		speech.SectionID,
		speech.SpeechIndex,
		speech.MemberCode,
		speech.SpeakerName,
		speech.DebateTitle,
		speech.Chamber,
		speech.Text,
		wordCount,
		speech.SpokeAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert speech: %w", err)
	}
	return nil
}

func (c *Client) ListUnchunkedSpeeches(ctx context.Context, limit int) ([]models.DebateSpeech, error) {
	query := `
		SELECT section_id, speech_index, member_code, speaker_name, debate_title, chamber, text, spoke_at
		FROM debate_speeches
		WHERE NOT chunked
		ORDER BY spoke_at
		LIMIT $1
	`

	rows, err := c.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unchunked speeches: %w", err)
	}
	defer rows.Close()

	var speeches []models.DebateSpeech
	for rows.Next() {
		var s models.DebateSpeech
		if err := rows.Scan(&s.SectionID, &s.SpeechIndex, &s.MemberCode, &s.SpeakerName, &s.DebateTitle, &s.Chamber, &s.Text, &s.SpokeAt); err != nil {
			return nil, fmt.Errorf("failed to scan speech row: %w", err)
		}
		speeches = append(speeches, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate speech rows: %w", err)
	}

	return speeches, nil
}

func (c *Client) MarkSpeechChunked(ctx context.Context, sectionID string, speechIndex int) error {
	query := `UPDATE debate_speeches SET chunked = TRUE WHERE section_id = $1 AND speech_index = $2`

	if _, err := c.pool.Exec(ctx, query, sectionID, speechIndex); err != nil {
		return fmt.Errorf("failed to mark speech chunked: %w", err)
	}
	return nil
}

func (c *Client) InsertChunk(ctx context.Context, chunk *models.DebateChunk) error {
	query := `
		INSERT INTO debate_chunks (id, section_id, chunk_index, member_code, text)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := c.pool.Exec(ctx, query, chunk.ID, chunk.SectionID, chunk.ChunkIndex, chunk.MemberCode, chunk.Text)
	if err != nil {
		return fmt.Errorf("failed to insert chunk: %w", err)
	}
	return nil
}

type SpeechStats struct {
	SpeechCount int
	WordCount   int
	DebateCount int
}

func (c *Client) SpeechStatsByMember(ctx context.Context, since time.Time) (map[string]SpeechStats, error) {
	query := `
		SELECT member_code,
			COUNT(*) AS speeches,
			COALESCE(SUM(word_count), 0) AS words,
			COUNT(DISTINCT section_id) AS debates
		FROM debate_speeches
		WHERE spoke_at >= $1 AND member_code <> ''
		GROUP BY member_code
	`

	rows, err := c.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query speech stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]SpeechStats)
	for rows.Next() {
		var memberCode string
		var s SpeechStats
		if err := rows.Scan(&memberCode, &s.SpeechCount, &s.WordCount, &s.DebateCount); err != nil {
			return nil, fmt.Errorf("failed to scan speech stats row: %w", err)
		}
		stats[memberCode] = s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate speech stats rows: %w", err)
	}

	return stats, nil
}

func (c *Client) UpsertDebateMetrics(ctx context.Context, m *models.TDDebateMetrics) error {
	query := `
		INSERT INTO td_debates (member_code, period_start, period_end, speech_count, word_count, debate_count, topic_count, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (member_code, period_start) DO UPDATE SET
			period_end = EXCLUDED.period_end,
			speech_count = EXCLUDED.speech_count,
			word_count = EXCLUDED.word_count,
			debate_count = EXCLUDED.debate_count,
			topic_count = EXCLUDED.topic_count,
			updated_at = NOW()
	`

	_, err := c.pool.Exec(ctx, query,
		m.MemberCode, m.PeriodStart, m.PeriodEnd,
		m.SpeechCount, m.WordCount, m.DebateCount, m.TopicCount,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert debate metrics: %w", err)
	}
	return nil
}

func (c *Client) UpsertTopic(ctx context.Context, topic *models.DebateTopic) error {
	query := `
		INSERT INTO debate_topics (section_id, topic, method, confidence)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (section_id, topic) DO UPDATE SET
			method = EXCLUDED.method,
			confidence = EXCLUDED.confidence
	`

	_, err := c.pool.Exec(ctx, query, topic.SectionID, topic.Topic, topic.Method, topic.Confidence)
	if err != nil {
		return fmt.Errorf("failed to upsert topic: %w", err)
	}
	return nil
}

type SectionSample struct {
	SectionID string
	Title     string
	Text      string
}

// SectionsWithoutTopics returns debate sections that have speeches stored
// but no extracted topics yet, with a concatenated text sample per section.
func (c *Client) SectionsWithoutTopics(ctx context.Context, limit int) ([]SectionSample, error) {
	query := `
		SELECT s.section_id,
			MAX(s.debate_title) AS title,
			SUBSTRING(STRING_AGG(s.text, ' ' ORDER BY s.speech_index) FOR 8000) AS sample
		FROM debate_speeches s
		LEFT JOIN debate_topics t ON t.section_id = s.section_id
		WHERE t.section_id IS NULL
		GROUP BY s.section_id
		LIMIT $1
	`

	rows, err := c.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections without topics: %w", err)
	}
	defer rows.Close()

	var sections []SectionSample
	for rows.Next() {
		var s SectionSample
		if err := rows.Scan(&s.SectionID, &s.Title, &s.Text); err != nil {
			return nil, fmt.Errorf("failed to scan section row: %w", err)
		}
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate section rows: %w", err)
	}

	return sections, nil
}

// TopicCountsByMember counts distinct topics across the sections each member
// spoke in since the given time.
func (c *Client) TopicCountsByMember(ctx context.Context, since time.Time) (map[string]int, error) {
	query := `
		SELECT s.member_code, COUNT(DISTINCT t.topic)
		FROM debate_speeches s
		JOIN debate_topics t ON t.section_id = s.section_id
		WHERE s.spoke_at >= $1 AND s.member_code <> ''
		GROUP BY s.member_code
	`

	rows, err := c.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query topic counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var memberCode string
		var n int
		if err := rows.Scan(&memberCode, &n); err != nil {
			return nil, fmt.Errorf("failed to scan topic count row: %w", err)
		}
		counts[memberCode] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate topic count rows: %w", err)
	}

	return counts, nil
}
