package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"site-pipeline/internal/models"
)

const packKeySegment = "content-pack:"

// RedisPackStore caches packs as JSON under "<prefix>content-pack:<projectId>".
type RedisPackStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisPackStore creates a store. A ttl of zero keeps keys forever.
func NewRedisPackStore(client redis.Cmdable, prefix string, ttl time.Duration) *RedisPackStore {
	return &RedisPackStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisPackStore) key(projectID string) string {
	return s.prefix + packKeySegment + projectID
}

func (s *RedisPackStore) LoadContentPack(ctx context.Context, projectID string) (*models.ContentPack, error) {
	data, err := s.client.Get(ctx, s.key(projectID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", projectID, err)
	}

	var pack models.ContentPack
	if err := json.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("decode cached pack %s: %w", projectID, err)
	}
	return &pack, nil
}

func (s *RedisPackStore) StoreContentPack(ctx context.Context, projectID string, pack *models.ContentPack) error {
	data, err := json.Marshal(pack)
	if err != nil {
		return fmt.Errorf("encode pack %s: %w", projectID, err)
	}
	if err := s.client.Set(ctx, s.key(projectID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", projectID, err)
	}
	return nil
}
