package store

import (
	"context"
	"errors"

	"site-pipeline/internal/common/logger"
	"site-pipeline/internal/models"
)

// TieredPackStore reads through a fast cache in front of a durable store and
// writes through to both. A cache failure is logged and never fails the call.
type TieredPackStore struct {
	cache   PackStore
	durable PackStore
	log     logger.Logger
}

func NewTieredPackStore(cache, durable PackStore, log logger.Logger) *TieredPackStore {
	return &TieredPackStore{cache: cache, durable: durable, log: log}
}

func (t *TieredPackStore) LoadContentPack(ctx context.Context, projectID string) (*models.ContentPack, error) {
	pack, err := t.cache.LoadContentPack(ctx, projectID)
	if err != nil {
		t.log.Warn("pack cache read failed", map[string]interface{}{
			"projectId": projectID,
			"error":     err.Error(),
		})
	}
	if pack != nil {
		return pack, nil
	}

	pack, err = t.durable.LoadContentPack(ctx, projectID)
	if err != nil || pack == nil {
		return pack, err
	}

	if err := t.cache.StoreContentPack(ctx, projectID, pack); err != nil {
		t.log.Warn("pack cache backfill failed", map[string]interface{}{
			"projectId": projectID,
			"error":     err.Error(),
		})
	}
	return pack, nil
}

func (t *TieredPackStore) StoreContentPack(ctx context.Context, projectID string, pack *models.ContentPack) error {
	if err := t.durable.StoreContentPack(ctx, projectID, pack); err != nil {
		return err
	}
	if err := t.cache.StoreContentPack(ctx, projectID, pack); err != nil {
		t.log.Warn("pack cache write failed", map[string]interface{}{
			"projectId": projectID,
			"error":     err.Error(),
		})
	}
	return nil
}

// AuditSinks fans records out to every sink and joins their errors.
type AuditSinks []AuditSink

func (s AuditSinks) RecordVerdict(ctx context.Context, rec VerdictRecord) error {
	var errs []error
	for _, sink := range s {
		if err := sink.RecordVerdict(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s AuditSinks) RecordRun(ctx context.Context, rec RunRecord) error {
	var errs []error
	for _, sink := range s {
		if err := sink.RecordRun(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
