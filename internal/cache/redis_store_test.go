package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/trendbeat-hq/trendbeat-source-hub/internal/domain"
)

// fakeRedis implements redisCommander over an in-memory map, recording the
// expirations passed to Set.
type fakeRedis struct {
	values      map[string]string
	expirations map[string]time.Duration
	getErr      error
	closed      bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		values:      make(map[string]string),
		expirations: make(map[string]time.Duration),
	}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	value, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	payload, ok := value.([]byte)
	if !ok {
		return redis.NewStatusResult("", redis.ErrClosed)
	}
	f.values[key] = string(payload)
	f.expirations[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

func TestRedisStoreRoundtrip(t *testing.T) {
	client := newFakeRedis()
	store := newRedisStore(client, time.Hour)
	ctx := context.Background()

	items := []domain.Item{{ID: "1", Title: "First", URL: "https://example.com/1"}}
	if err := store.Set(ctx, "solidot", items); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if _, ok := client.values["source:cache:solidot"]; !ok {
		t.Fatalf("expected prefixed key, got %v", client.values)
	}
	if ttl := client.expirations["source:cache:solidot"]; ttl != time.Hour {
		t.Fatalf("expected retention as key TTL, got %v", ttl)
	}

	entry, found, err := store.Get(ctx, "solidot")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found || len(entry.Items) != 1 || entry.Items[0].ID != "1" {
		t.Fatalf("unexpected entry %#v found=%v", entry, found)
	}
	if entry.UpdatedAt.IsZero() {
		t.Fatal("expected a refresh timestamp")
	}
}

func TestRedisStoreMissOnNil(t *testing.T) {
	store := newRedisStore(newFakeRedis(), time.Hour)

	_, found, err := store.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("redis.Nil must be a miss, not an error: %v", err)
	}
	if found {
		t.Fatal("expected a miss")
	}
}

func TestRedisStoreMalformedBlobReadsAsMiss(t *testing.T) {
	client := newFakeRedis()
	client.values["source:cache:bad"] = "not json"
	store := newRedisStore(client, time.Hour)

	_, found, err := store.Get(context.Background(), "bad")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found {
		t.Fatal("malformed blob must read as a miss")
	}

	// A blob without a refresh timestamp is equally useless.
	zero, _ := json.Marshal(wireEntry{Items: []domain.Item{{ID: "1"}}})
	client.values["source:cache:zero"] = string(zero)
	if _, found, _ := store.Get(context.Background(), "zero"); found {
		t.Fatal("blob without a timestamp must read as a miss")
	}
}

func TestRedisStoreBackendErrorSurfaces(t *testing.T) {
	client := newFakeRedis()
	client.getErr = redis.ErrClosed
	store := newRedisStore(client, time.Hour)

	if _, _, err := store.Get(context.Background(), "x"); err == nil {
		t.Fatal("backend failures must surface as errors")
	}
}

func TestRedisStoreDeleteAndClose(t *testing.T) {
	client := newFakeRedis()
	store := newRedisStore(client, time.Hour)
	ctx := context.Background()

	if err := store.Set(ctx, "s", []domain.Item{{ID: "1"}}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Delete(ctx, "s"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found, _ := store.Get(ctx, "s"); found {
		t.Fatal("deleted entry must read as a miss")
	}

	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !client.closed {
		t.Fatal("Close must release the client")
	}
}
