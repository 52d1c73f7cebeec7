package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/trendbeat-hq/trendbeat-source-hub/internal/domain"
)

// Package cache provides the per-source item cache over a key/value backend.

// Entry is the last-known item set for one source. Entries are replaced
// wholesale on every successful refresh, never partially updated.
type Entry struct {
	SourceID  string
	Items     []domain.Item
	UpdatedAt time.Time
}

// Age returns how long ago the entry was last refreshed.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.UpdatedAt)
}

// Store is the cache contract used by the refresher. Get reports whether an
// entry exists; a backend failure surfaces as an error so callers can degrade
// to a fetch.
type Store interface {
	Close() error
	Get(ctx context.Context, sourceID string) (Entry, bool, error)
	Set(ctx context.Context, sourceID string, items []domain.Item) error
	Delete(ctx context.Context, sourceID string) error
}

// wireEntry is the serialized blob stored per source key.
type wireEntry struct {
	Items   []domain.Item `json:"items"`
	Updated int64         `json:"updated"` // epoch millis
}

// Options controls backend selection and retention characteristics.
type Options struct {
	Backend         string
	BoltPath        string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	Retention       time.Duration
	CleanupInterval time.Duration
}

const (
	defaultRetention       = time.Hour
	defaultCleanupInterval = 10 * time.Minute
)

// NewStore creates the configured cache backend.
func NewStore(opts Options) (Store, error) {
	backend := strings.TrimSpace(strings.ToLower(opts.Backend))
	opts = normalizeOptions(opts)

	switch backend {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(opts.BoltPath) == "" {
			return nil, fmt.Errorf("bbolt cache requires a path")
		}
		return openBolt(opts.BoltPath, opts)
	case "redis":
		if strings.TrimSpace(opts.RedisAddr) == "" {
			return nil, fmt.Errorf("redis cache requires an address")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		return newRedisStore(client, opts.Retention), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", opts.Backend)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.Retention <= 0 {
		opts.Retention = defaultRetention
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                                     { return nil }
func (noopStore) Get(context.Context, string) (Entry, bool, error) { return Entry{}, false, nil }
func (noopStore) Set(context.Context, string, []domain.Item) error { return nil }
func (noopStore) Delete(context.Context, string) error             { return nil }
