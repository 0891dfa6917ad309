package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/glaspolitics/backend/pkg/logger"
)

type Client struct {
	pool *pgxpool.Pool
}

func NewClient(ctx context.Context, dsn string, maxConns int) (*Client, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	logger.Info("Postgres client initialized", zap.Int32("max_conns", cfg.MaxConns))

	return &Client{pool: pool}, nil
}

func (c *Client) Close() {
	c.pool.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func (c *Client) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS td_scores (
		member_code TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		party TEXT NOT NULL DEFAULT '',
		constituency TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		wikipedia_title TEXT NOT NULL DEFAULT '',
		is_minister BOOLEAN NOT NULL DEFAULT FALSE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		overall DOUBLE PRECISION NOT NULL DEFAULT 1500,
		transparency DOUBLE PRECISION NOT NULL DEFAULT 1500,
		effectiveness DOUBLE PRECISION NOT NULL DEFAULT 1500,
		integrity DOUBLE PRECISION NOT NULL DEFAULT 1500,
		consistency DOUBLE PRECISION NOT NULL DEFAULT 1500,
		service DOUBLE PRECISION NOT NULL DEFAULT 1500,
		questions_asked INTEGER NOT NULL DEFAULT 0,
		bills_sponsored INTEGER NOT NULL DEFAULT 0,
		votes_cast INTEGER NOT NULL DEFAULT 0,
		votes_eligible INTEGER NOT NULL DEFAULT 0,
		speech_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_td_scores_party ON td_scores(party);
	CREATE INDEX IF NOT EXISTS idx_td_scores_constituency ON td_scores(constituency);
	CREATE INDEX IF NOT EXISTS idx_td_scores_overall ON td_scores(overall);

	CREATE TABLE IF NOT EXISTS td_votes (
		division_id TEXT NOT NULL,
		member_code TEXT NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		voted_as TEXT NOT NULL,
		chamber TEXT NOT NULL DEFAULT 'dail',
		voted_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (division_id, member_code)
	);
	CREATE INDEX IF NOT EXISTS idx_td_votes_member ON td_votes(member_code);
	CREATE INDEX IF NOT EXISTS idx_td_votes_voted_at ON td_votes(voted_at);

	CREATE TABLE IF NOT EXISTS td_debates (
		member_code TEXT NOT NULL,
		period_start TIMESTAMPTZ NOT NULL,
		period_end TIMESTAMPTZ NOT NULL,
		speech_count INTEGER NOT NULL DEFAULT 0,
		word_count INTEGER NOT NULL DEFAULT 0,
		debate_count INTEGER NOT NULL DEFAULT 0,
		topic_count INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (member_code, period_start)
	);

	CREATE TABLE IF NOT EXISTS debate_speeches (
		section_id TEXT NOT NULL,
		speech_index INTEGER NOT NULL,
		member_code TEXT NOT NULL DEFAULT '',
		speaker_name TEXT NOT NULL DEFAULT '',
		debate_title TEXT NOT NULL DEFAULT '',
		chamber TEXT NOT NULL DEFAULT 'dail',
		text TEXT NOT NULL,
		word_count INTEGER NOT NULL DEFAULT 0,
		spoke_at TIMESTAMPTZ NOT NULL,
		chunked BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (section_id, speech_index)
	);
	CREATE INDEX IF NOT EXISTS idx_debate_speeches_member ON debate_speeches(member_code);
	CREATE INDEX IF NOT EXISTS idx_debate_speeches_spoke_at ON debate_speeches(spoke_at);
	CREATE INDEX IF NOT EXISTS idx_debate_speeches_chunked ON debate_speeches(chunked);

	CREATE TABLE IF NOT EXISTS debate_chunks (
		id TEXT PRIMARY KEY,
		section_id TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		member_code TEXT NOT NULL DEFAULT '',
		text TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_debate_chunks_section ON debate_chunks(section_id);

	CREATE TABLE IF NOT EXISTS debate_topics (
		section_id TEXT NOT NULL,
		topic TEXT NOT NULL,
		method TEXT NOT NULL DEFAULT 'llm',
		confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (section_id, topic)
	);

	CREATE TABLE IF NOT EXISTS party_performance_scores (
		party TEXT PRIMARY KEY,
		color TEXT NOT NULL DEFAULT '',
		member_count INTEGER NOT NULL DEFAULT 0,
		overall DOUBLE PRECISION NOT NULL DEFAULT 1500,
		transparency DOUBLE PRECISION NOT NULL DEFAULT 1500,
		effectiveness DOUBLE PRECISION NOT NULL DEFAULT 1500,
		integrity DOUBLE PRECISION NOT NULL DEFAULT 1500,
		consistency DOUBLE PRECISION NOT NULL DEFAULT 1500,
		service DOUBLE PRECISION NOT NULL DEFAULT 1500,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS constituencies (
		name TEXT PRIMARY KEY,
		seat_count INTEGER NOT NULL DEFAULT 3,
		vote_shares JSONB NOT NULL DEFAULT '{}',
		boundary JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS news_sources (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		feed_url TEXT NOT NULL UNIQUE,
		enabled BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS news_articles (
		id TEXT PRIMARY KEY,
		url TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		score DOUBLE PRECISION NOT NULL DEFAULT 0,
		published_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_news_articles_published ON news_articles(published_at);
	CREATE INDEX IF NOT EXISTS idx_news_articles_score ON news_articles(score);
	`

	if _, err := c.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("Postgres schema initialized")
	return nil
}
