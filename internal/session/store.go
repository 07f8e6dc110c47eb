package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces persisted session records.
const KeyPrefix = "catalogdesk:current_user:"

// RedisStore keeps one record under a fixed key.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStore returns a store for the given browser session.
func NewRedisStore(client *redis.Client, sessionID string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, key: KeyPrefix + sessionID, ttl: ttl}
}

// Key returns the redis key backing the store.
func (s *RedisStore) Key() string { return s.key }

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context) (Record, bool, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, false, fmt.Errorf("decode record: %w", err)
	}
	return rec, true, nil
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, raw, s.ttl).Err()
}

// Clear implements Store.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// RedisStoreFactory builds a RedisStore per browser session.
func RedisStoreFactory(client *redis.Client, ttl time.Duration) func(sessionID string) Store {
	return func(sessionID string) Store {
		return NewRedisStore(client, sessionID, ttl)
	}
}
