package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"site-pipeline/internal/models"
)

const (
	selectPackQuery = `SELECT pack FROM content_packs WHERE project_id = $1`

	upsertPackQuery = `INSERT INTO content_packs (project_id, version, hash, source_hash, generated_at, pack, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW())
ON CONFLICT (project_id) DO UPDATE SET
	version = EXCLUDED.version,
	hash = EXCLUDED.hash,
	source_hash = EXCLUDED.source_hash,
	generated_at = EXCLUDED.generated_at,
	pack = EXCLUDED.pack,
	updated_at = NOW()`

	insertVerdictQuery = `INSERT INTO editor_verdicts (run_id, project_id, attempt, approved, aggregate_score, verdict, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	insertRunQuery = `INSERT INTO pipeline_runs (run_id, project_id, success, cache_hit, revisions, content_hash, total_tokens, duration_ms, errors, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (run_id) DO NOTHING`
)

// PostgresPackStore is the durable pack store. It also records the audit
// trail in the pipeline_runs and editor_verdicts tables.
type PostgresPackStore struct {
	db *sql.DB
}

func NewPostgresPackStore(db *sql.DB) *PostgresPackStore {
	return &PostgresPackStore{db: db}
}

func (s *PostgresPackStore) LoadContentPack(ctx context.Context, projectID string) (*models.ContentPack, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, selectPackQuery, projectID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query content pack %s: %w", projectID, err)
	}

	var pack models.ContentPack
	if err := json.Unmarshal(raw, &pack); err != nil {
		return nil, fmt.Errorf("decode content pack %s: %w", projectID, err)
	}
	return &pack, nil
}

func (s *PostgresPackStore) StoreContentPack(ctx context.Context, projectID string, pack *models.ContentPack) error {
	raw, err := json.Marshal(pack)
	if err != nil {
		return fmt.Errorf("encode content pack %s: %w", projectID, err)
	}

	_, err = s.db.ExecContext(ctx, upsertPackQuery,
		projectID, pack.Version, pack.Hash, pack.SourceHash, pack.GeneratedAt, raw)
	if err != nil {
		return fmt.Errorf("upsert content pack %s: %w", projectID, err)
	}
	return nil
}

func (s *PostgresPackStore) RecordVerdict(ctx context.Context, rec VerdictRecord) error {
	if rec.Verdict == nil {
		return errors.New("verdict record without verdict")
	}
	raw, err := json.Marshal(rec.Verdict)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, insertVerdictQuery,
		rec.RunID, rec.ProjectID, rec.Attempt, rec.Verdict.Approved, rec.Verdict.Scores.Aggregate, raw, rec.RecordedAt)
	if err != nil {
		return fmt.Errorf("insert verdict for run %s: %w", rec.RunID, err)
	}
	return nil
}

func (s *PostgresPackStore) RecordRun(ctx context.Context, rec RunRecord) error {
	errs, err := json.Marshal(rec.Errors)
	if err != nil {
		return err
	}

	var hash sql.NullString
	if rec.ContentHash != "" {
		hash = sql.NullString{String: rec.ContentHash, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, insertRunQuery,
		rec.RunID, rec.ProjectID, rec.Success, rec.CacheHit, rec.Revisions, hash,
		rec.TotalTokens, rec.Duration.Milliseconds(), errs, rec.RecordedAt)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", rec.RunID, err)
	}
	return nil
}
