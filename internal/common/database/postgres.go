// Package database wraps the connection setup for the pipeline's backing
// stores.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"site-pipeline/internal/common/config"

	_ "github.com/lib/pq"
)

// Schema creates the tables used by the pack store and the run audit.
const Schema = `
CREATE TABLE IF NOT EXISTS content_packs (
	project_id   TEXT PRIMARY KEY,
	version      TEXT NOT NULL,
	hash         TEXT NOT NULL,
	source_hash  TEXT NOT NULL,
	generated_at TIMESTAMPTZ NOT NULL,
	pack         JSONB NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS pipeline_runs (
	run_id        TEXT PRIMARY KEY,
	project_id    TEXT NOT NULL,
	success       BOOLEAN NOT NULL,
	cache_hit     BOOLEAN NOT NULL,
	revisions     INTEGER NOT NULL,
	content_hash  TEXT,
	total_tokens  INTEGER NOT NULL,
	duration_ms   BIGINT NOT NULL,
	errors        JSONB,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS editor_verdicts (
	id              BIGSERIAL PRIMARY KEY,
	run_id          TEXT NOT NULL,
	project_id      TEXT NOT NULL,
	attempt         INTEGER NOT NULL,
	approved        BOOLEAN NOT NULL,
	aggregate_score NUMERIC(4,1) NOT NULL,
	verdict         JSONB NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

type PostgresClient struct {
	DB *sql.DB
}

func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
	}
	if cfg.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.MaxIdle)
	}
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Migrate applies Schema. Every statement is idempotent.
func (c *PostgresClient) Migrate(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
