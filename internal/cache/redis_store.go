package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/trendbeat-hq/trendbeat-source-hub/internal/domain"
)

const redisKeyPrefix = "source:cache:"

// redisCommander is the subset of the go-redis client the store uses.
type redisCommander interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// redisStore implements a Store backed by Redis. Expiry is delegated to the
// backend via the key TTL.
type redisStore struct {
	client    redisCommander
	retention time.Duration
}

func newRedisStore(client redisCommander, retention time.Duration) *redisStore {
	return &redisStore{
		client:    client,
		retention: retention,
	}
}

func redisKey(sourceID string) string {
	return redisKeyPrefix + sourceID
}

// Close releases the underlying client.
func (r *redisStore) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}

// Get returns the cached entry for the source. A malformed blob is treated as
// a miss rather than an error.
func (r *redisStore) Get(ctx context.Context, sourceID string) (Entry, bool, error) {
	if r == nil || r.client == nil {
		return Entry{}, false, nil
	}

	raw, err := r.client.Get(ctx, redisKey(sourceID)).Result()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis get %s: %w", sourceID, err)
	}

	var wire wireEntry
	if err := json.Unmarshal([]byte(raw), &wire); err != nil || wire.Updated <= 0 {
		return Entry{}, false, nil
	}

	return Entry{
		SourceID:  sourceID,
		Items:     wire.Items,
		UpdatedAt: time.UnixMilli(wire.Updated),
	}, true, nil
}

// Set replaces the entry for the source, stamped now, expiring at the
// retention window.
func (r *redisStore) Set(ctx context.Context, sourceID string, items []domain.Item) error {
	if r == nil || r.client == nil {
		return nil
	}

	payload, err := json.Marshal(wireEntry{
		Items:   items,
		Updated: time.Now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := r.client.Set(ctx, redisKey(sourceID), payload, r.retention).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", sourceID, err)
	}
	return nil
}

// Delete removes the entry for the source, if any.
func (r *redisStore) Delete(ctx context.Context, sourceID string) error {
	if r == nil || r.client == nil {
		return nil
	}

	if err := r.client.Del(ctx, redisKey(sourceID)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", sourceID, err)
	}
	return nil
}
