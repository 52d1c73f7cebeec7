package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/trendbeat-hq/trendbeat-source-hub/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const cacheBucket = "source_cache"

// boltStore implements a Store backed by BoltDB. Each value is the JSON wire
// blob {items, updated}; expiry is enforced lazily on read plus a periodic
// sweep so stale-fallback stays possible until the retention window elapses.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	retention       time.Duration
	cleanupInterval time.Duration
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(cacheBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		retention:       opts.Retention,
		cleanupInterval: opts.CleanupInterval,
	}
	store.lastCleanup.Store(time.Now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Get returns the cached entry for the source, dropping entries older than the
// retention window.
func (b *boltStore) Get(_ context.Context, sourceID string) (Entry, bool, error) {
	if b == nil || b.db == nil {
		return Entry{}, false, nil
	}

	now := time.Now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return Entry{}, false, err
	}

	var (
		entry Entry
		found bool
	)
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(cacheBucket))
		if bucket == nil {
			return fmt.Errorf("cache bucket missing")
		}

		key := []byte(sourceID)
		value := bucket.Get(key)
		if value == nil {
			return nil
		}

		wire, ok := decodeWireEntry(value)
		if !ok || now.Sub(updatedTime(wire)) >= b.retention {
			return bucket.Delete(key)
		}

		entry = Entry{
			SourceID:  sourceID,
			Items:     wire.Items,
			UpdatedAt: updatedTime(wire),
		}
		found = true
		return nil
	})
	if err != nil {
		return Entry{}, false, err
	}
	return entry, found, nil
}

// Set replaces the entry for the source with the given items, stamped now.
func (b *boltStore) Set(_ context.Context, sourceID string, items []domain.Item) error {
	if b == nil || b.db == nil {
		return nil
	}

	now := time.Now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	payload, err := json.Marshal(wireEntry{
		Items:   items,
		Updated: now.UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(cacheBucket))
		if bucket == nil {
			return fmt.Errorf("cache bucket missing")
		}
		return bucket.Put([]byte(sourceID), payload)
	})
}

// Delete removes the entry for the source, if any.
func (b *boltStore) Delete(_ context.Context, sourceID string) error {
	if b == nil || b.db == nil {
		return nil
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(cacheBucket))
		if bucket == nil {
			return fmt.Errorf("cache bucket missing")
		}
		return bucket.Delete([]byte(sourceID))
	})
}

// maybeCleanupExpired removes retention-expired entries on a fixed cadence to
// avoid unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(cacheBucket))
		if bucket == nil {
			return fmt.Errorf("cache bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			wire, ok := decodeWireEntry(v)
			if !ok || now.Sub(updatedTime(wire)) >= b.retention {
				if err := cursor.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

// decodeWireEntry parses a stored blob; malformed blobs are treated as absent.
func decodeWireEntry(value []byte) (wireEntry, bool) {
	var wire wireEntry
	if err := json.Unmarshal(value, &wire); err != nil {
		return wireEntry{}, false
	}
	if wire.Updated <= 0 {
		return wireEntry{}, false
	}
	return wire, true
}

func updatedTime(wire wireEntry) time.Time {
	return time.UnixMilli(wire.Updated)
}
