package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eqcoach/services"

	"github.com/redis/go-redis/v9"
)

// DefaultSnapshotTTL bounds how long an idle session survives.
const DefaultSnapshotTTL = 24 * time.Hour

// lockTTL releases a generation lock held by a crashed instance.
const lockTTL = 2 * time.Minute

// SnapshotStore keeps whole session records as JSON strings.
type SnapshotStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSnapshotStore creates a store; a zero ttl uses DefaultSnapshotTTL.
func NewSnapshotStore(rdb *redis.Client, ttl time.Duration) *SnapshotStore {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &SnapshotStore{rdb: rdb, ttl: ttl}
}

func snapshotKey(kind, id string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, kind, id)
}

func lockKey(kind, id string) string {
	return snapshotKey(kind, id) + ":lock"
}

// Save replaces the record and refreshes its expiry.
func (s *SnapshotStore) Save(ctx context.Context, kind, id string, v interface{}) error {
	if s == nil || s.rdb == nil {
		return errRedisUnavailable
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s snapshot: %w", kind, err)
	}
	if err := s.rdb.Set(ctx, snapshotKey(kind, id), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save %s snapshot: %w", kind, err)
	}
	return nil
}

// Load decodes the record into v or returns services.ErrSessionNotFound.
func (s *SnapshotStore) Load(ctx context.Context, kind, id string, v interface{}) error {
	if s == nil || s.rdb == nil {
		return errRedisUnavailable
	}
	b, err := s.rdb.Get(ctx, snapshotKey(kind, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return services.ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load %s snapshot: %w", kind, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("failed to decode %s snapshot: %w", kind, err)
	}
	return nil
}

func (s *SnapshotStore) Delete(ctx context.Context, kind, id string) error {
	if s == nil || s.rdb == nil {
		return errRedisUnavailable
	}
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, snapshotKey(kind, id))
	pipe.Del(ctx, lockKey(kind, id))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete %s snapshot: %w", kind, err)
	}
	return nil
}

// TryLock takes the generation lock for a session. It reports false when
// another request already holds it.
func (s *SnapshotStore) TryLock(ctx context.Context, kind, id string) (bool, error) {
	if s == nil || s.rdb == nil {
		return false, errRedisUnavailable
	}
	ok, err := s.rdb.SetNX(ctx, lockKey(kind, id), time.Now().Unix(), lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to lock %s: %w", kind, err)
	}
	return ok, nil
}

func (s *SnapshotStore) Unlock(ctx context.Context, kind, id string) error {
	if s == nil || s.rdb == nil {
		return errRedisUnavailable
	}
	return s.rdb.Del(ctx, lockKey(kind, id)).Err()
}
