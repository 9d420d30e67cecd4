package authzinfra

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mutuo-app/mutuo/pkg/authz"
	"github.com/mutuo-app/mutuo/pkg/errx"
	"github.com/mutuo-app/mutuo/pkg/logx"
	"github.com/redis/go-redis/v9"
)

// RedisSnapshotStore is the durable snapshot store backing the session
// record: it survives process restarts. Entries carry a TTL so abandoned
// sessions age out of Redis on their own.
type RedisSnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSnapshotStore creates a Redis-backed snapshot store. A zero TTL
// persists entries until explicitly deleted.
func NewRedisSnapshotStore(client *redis.Client, ttl time.Duration) *RedisSnapshotStore {
	return &RedisSnapshotStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *RedisSnapshotStore) Save(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return errx.Wrap(err, "failed to encode snapshot", errx.TypeInternal)
	}
	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return errx.Wrap(err, "failed to persist snapshot", errx.TypeExternal).WithDetail("key", key)
	}
	return nil
}

func (s *RedisSnapshotStore) Load(ctx context.Context, key string, dest interface{}) (bool, error) {
	payload, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, errx.Wrap(err, "failed to read snapshot", errx.TypeExternal).WithDetail("key", key)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		// Corrupt state reads as absent, never as an error.
		logx.WithField("key", key).WithError(err).Debug("discarding corrupt snapshot")
		return false, nil
	}
	return true, nil
}

func (s *RedisSnapshotStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return errx.Wrap(err, "failed to delete snapshot", errx.TypeExternal).WithDetail("key", key)
	}
	return nil
}

var _ authz.SnapshotStore = (*RedisSnapshotStore)(nil)
