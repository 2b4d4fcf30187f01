// Package store persists content packs between runs and keeps an audit trail
// of editor verdicts and run summaries.
package store

import (
	"context"
	"sync"
	"time"

	"site-pipeline/internal/models"
)

// PackStore loads and saves the content pack for a project. Load returns
// (nil, nil) when the project has no pack. Store is an idempotent upsert.
type PackStore interface {
	LoadContentPack(ctx context.Context, projectID string) (*models.ContentPack, error)
	StoreContentPack(ctx context.Context, projectID string, pack *models.ContentPack) error
}

// VerdictRecord is one editor verdict inside a run.
type VerdictRecord struct {
	RunID      string                `json:"runId"`
	ProjectID  string                `json:"projectId"`
	Attempt    int                   `json:"attempt"`
	Verdict    *models.EditorVerdict `json:"verdict"`
	RecordedAt time.Time             `json:"recordedAt"`
}

// RunRecord summarises a finished run.
type RunRecord struct {
	RunID       string                 `json:"runId"`
	ProjectID   string                 `json:"projectId"`
	Success     bool                   `json:"success"`
	CacheHit    bool                   `json:"cacheHit"`
	Revisions   int                    `json:"revisions"`
	ContentHash string                 `json:"contentHash,omitempty"`
	TotalTokens int                    `json:"totalTokens"`
	Duration    time.Duration          `json:"duration"`
	Errors      []models.PipelineError `json:"errors,omitempty"`
	RecordedAt  time.Time              `json:"recordedAt"`
}

// AuditSink receives audit records. Failures never affect a run.
type AuditSink interface {
	RecordVerdict(ctx context.Context, rec VerdictRecord) error
	RecordRun(ctx context.Context, rec RunRecord) error
}

// MemoryStore keeps packs and audit records in process. Packs are cloned on
// the way in and out.
type MemoryStore struct {
	mu       sync.RWMutex
	packs    map[string]*models.ContentPack
	verdicts []VerdictRecord
	runs     []RunRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{packs: make(map[string]*models.ContentPack)}
}

func (m *MemoryStore) LoadContentPack(ctx context.Context, projectID string) (*models.ContentPack, error) {
	m.mu.RLock()
	pack, ok := m.packs[projectID]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return pack.Clone()
}

func (m *MemoryStore) StoreContentPack(ctx context.Context, projectID string, pack *models.ContentPack) error {
	clone, err := pack.Clone()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.packs[projectID] = clone
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) RecordVerdict(ctx context.Context, rec VerdictRecord) error {
	m.mu.Lock()
	m.verdicts = append(m.verdicts, rec)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) RecordRun(ctx context.Context, rec RunRecord) error {
	m.mu.Lock()
	m.runs = append(m.runs, rec)
	m.mu.Unlock()
	return nil
}

// Verdicts returns the recorded verdicts in order.
func (m *MemoryStore) Verdicts() []VerdictRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]VerdictRecord(nil), m.verdicts...)
}

// Runs returns the recorded run summaries in order.
func (m *MemoryStore) Runs() []RunRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]RunRecord(nil), m.runs...)
}

// Projects returns how many projects have a stored pack.
func (m *MemoryStore) Projects() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.packs)
}
