package refresher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/trendbeat-hq/trendbeat-source-hub/internal/cache"
	"github.com/trendbeat-hq/trendbeat-source-hub/internal/domain"
	"github.com/trendbeat-hq/trendbeat-source-hub/internal/logger"
	"github.com/trendbeat-hq/trendbeat-source-hub/pkg/getters"
	"github.com/trendbeat-hq/trendbeat-source-hub/pkg/publishers"
)

// Package refresher decides, per source, whether to serve cached items or
// refetch, and announces refreshed data downstream.

// ErrGetterNotRegistered reports a source with no bound getter. Like unknown
// and disabled sources this is a configuration error and is never masked by
// the cache.
var ErrGetterNotRegistered = errors.New("getter not registered")

// Status describes how a refresh result was produced.
type Status string

const (
	// StatusFresh marks data fetched this call or still inside its refresh interval.
	StatusFresh Status = "fresh"
	// StatusCached marks cached data served inside the cache TTL without a fetch.
	StatusCached Status = "cached"
	// StatusStale marks cached data served because the fetch failed.
	StatusStale Status = "stale"
)

// Result is the outcome of one refresh call. It is transient and never persisted.
type Result struct {
	Status    Status
	SourceID  string // effective id, post-redirect
	UpdatedAt time.Time
	Items     []domain.Item
}

// Options tunes the freshness policy.
type Options struct {
	// CacheTTL is the maximum entry age served without a refetch when the
	// caller does not insist on the latest data.
	CacheTTL time.Duration
	// MaxItems caps how many items of a fetch are kept and published.
	MaxItems int
	// FetchTimeout bounds a single getter invocation so one stalled upstream
	// cannot block callers indefinitely.
	FetchTimeout time.Duration
}

const (
	defaultCacheTTL     = 30 * time.Minute
	defaultMaxItems     = 30
	defaultFetchTimeout = 15 * time.Second
)

func normalizeRefreshOptions(opts Options) Options {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if opts.MaxItems <= 0 {
		opts.MaxItems = defaultMaxItems
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	return opts
}

// Refresher coordinates the catalog, cache, getter registry, and publisher.
type Refresher struct {
	catalog   SourceResolver
	store     cache.Store
	registry  GetterSource
	publisher EventPublisher // optional; nil in degraded/offline mode
	log       logger.Logger
	opts      Options
	now       func() time.Time
}

// New wires a refresher. The publisher may be nil, in which case refreshed
// data is cached but not announced.
func New(cat SourceResolver, store cache.Store, reg GetterSource, pub EventPublisher, log logger.Logger, opts Options) *Refresher {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Refresher{
		catalog:   cat,
		store:     store,
		registry:  reg,
		publisher: pub,
		log:       log,
		opts:      normalizeRefreshOptions(opts),
		now:       time.Now,
	}
}

// Refresh resolves the source, applies the freshness decision, and returns the
// current item set. With latest set, a borderline-stale cache entry is
// bypassed in favor of a refetch; entries still inside the source's refresh
// interval are served regardless, since refetching faster than the interval
// only wastes upstream requests.
func (r *Refresher) Refresh(ctx context.Context, sourceID string, latest bool) (Result, error) {
	if r == nil || r.catalog == nil || r.store == nil || r.registry == nil {
		return Result{}, fmt.Errorf("refresher is not initialized")
	}

	src, err := r.catalog.ResolveEffective(sourceID)
	if err != nil {
		return Result{}, err
	}

	getter, ok := r.registry.Get(src.ID)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrGetterNotRegistered, src.ID)
	}

	now := r.now()

	entry, cached, err := r.store.Get(ctx, src.ID)
	if err != nil {
		// A failing backend degrades to always-fetch.
		r.log.WarnObj("cache read failed", "cache_read_error", map[string]any{
			"source_id": src.ID,
			"error":     err.Error(),
		})
		cached = false
	}

	if cached {
		age := entry.Age(now)
		if age < src.Interval {
			return Result{
				Status:    StatusFresh,
				SourceID:  src.ID,
				UpdatedAt: now,
				Items:     entry.Items,
			}, nil
		}
		if age < r.opts.CacheTTL && !latest {
			return Result{
				Status:    StatusCached,
				SourceID:  src.ID,
				UpdatedAt: entry.UpdatedAt,
				Items:     entry.Items,
			}, nil
		}
	}

	items, err := r.fetch(ctx, getter)
	if err != nil {
		if cached {
			r.log.WarnObj("fetch failed, serving stale cache", "fetch_fallback", map[string]any{
				"source_id": src.ID,
				"cache_age": entry.Age(now).String(),
				"error":     err.Error(),
			})
			return Result{
				Status:    StatusStale,
				SourceID:  src.ID,
				UpdatedAt: entry.UpdatedAt,
				Items:     entry.Items,
			}, nil
		}
		return Result{}, fmt.Errorf("fetch source %s: %w", src.ID, err)
	}

	if len(items) > r.opts.MaxItems {
		items = items[:r.opts.MaxItems]
	}

	// An empty successful fetch never overwrites a non-empty cache and is not
	// worth announcing.
	if len(items) > 0 {
		if err := r.store.Set(ctx, src.ID, items); err != nil {
			r.log.WarnObj("cache write failed", "cache_write_error", map[string]any{
				"source_id": src.ID,
				"error":     err.Error(),
			})
		}
		r.publish(ctx, src.ID, items, now)
	}

	return Result{
		Status:    StatusFresh,
		SourceID:  src.ID,
		UpdatedAt: now,
		Items:     items,
	}, nil
}

// fetch invokes the getter under the configured deadline.
func (r *Refresher) fetch(ctx context.Context, getter getters.Getter) ([]domain.Item, error) {
	fctx, cancel := context.WithTimeout(ctx, r.opts.FetchTimeout)
	defer cancel()
	return getter.Fetch(fctx)
}

// publish emits exactly one best-effort publish attempt; failures are logged
// and never alter the refresh result.
func (r *Refresher) publish(ctx context.Context, sourceID string, items []domain.Item, at time.Time) {
	if r.publisher == nil {
		return
	}

	delivered, err := r.publisher.Publish(ctx, publishers.NewEvent(sourceID, items, at))
	if err != nil {
		r.log.ErrorObj("publish failed", "publish_error", map[string]any{
			"source_id": sourceID,
			"delivered": delivered,
			"error":     err.Error(),
		})
		return
	}
	r.log.DebugObj("source data published", "publish_result", map[string]any{
		"source_id":  sourceID,
		"item_count": len(items),
		"delivered":  delivered,
	})
}
