package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/trendbeat-hq/trendbeat-source-hub/internal/cache"
	"github.com/trendbeat-hq/trendbeat-source-hub/internal/catalog"
	"github.com/trendbeat-hq/trendbeat-source-hub/internal/config"
	"github.com/trendbeat-hq/trendbeat-source-hub/internal/logger"
	"github.com/trendbeat-hq/trendbeat-source-hub/internal/refresher"
	"github.com/trendbeat-hq/trendbeat-source-hub/pkg/getters"
	"github.com/trendbeat-hq/trendbeat-source-hub/pkg/publishers"
)

// Hub is the source-hub runtime. It wires the catalog, cache, getter registry,
// and publishers into a refresher and drives the periodic batch refresh loop.
type Hub struct {
	cfg       *config.Config
	catalog   *catalog.Catalog
	fanout    *publishers.Fanout
	refresher *refresher.Refresher
	store     cache.Store
	interval  time.Duration
	log       logger.Logger
}

// New builds a hub runtime from config files.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*Hub, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cat, err := catalog.Load(cfg.SourcesFile, cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("load source catalog: %w", err)
	}
	sourceIDs := cat.EnabledIDs()
	log.InfoObj("source catalog loaded", "catalog_meta", map[string]any{
		"total":   len(cat.All()),
		"enabled": sourceIDs,
	})

	registry := getters.DefaultRegistry(nil)
	for _, id := range sourceIDs {
		if !registry.Has(id) {
			log.WarnObj("enabled source has no getter", "source_id", id)
		}
	}

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		return nil, err
	}
	if fanout.Size() == 0 {
		log.WarnObj("no publishers configured; running without downstream announce", "publishers_file", cfg.PublishersFile)
	}

	store, err := cache.NewStore(cache.Options{
		Backend:         cfg.CacheBackend,
		BoltPath:        cfg.BBoltPath,
		RedisAddr:       cfg.RedisAddr,
		RedisPassword:   cfg.RedisPassword,
		RedisDB:         cfg.RedisDB,
		Retention:       cfg.CacheRetention,
		CleanupInterval: cfg.CacheCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init cache store: %w", err)
	}
	log.InfoObj("cache store initialized", "cache_config", map[string]any{
		"backend":           cfg.CacheBackend,
		"retention_seconds": int(cfg.CacheRetention.Seconds()),
	})

	var pub refresher.EventPublisher
	if fanout.Size() > 0 {
		pub = fanout
	}
	ref := refresher.New(cat, store, registry, pub, log, refresher.Options{
		CacheTTL:     cfg.CacheTTL,
		MaxItems:     cfg.MaxItems,
		FetchTimeout: cfg.FetchTimeout,
	})

	return &Hub{
		cfg:       cfg,
		catalog:   cat,
		fanout:    fanout,
		refresher: ref,
		store:     store,
		interval:  cfg.RefreshLoop,
		log:       log,
	}, nil
}

// buildFanout loads publisher configs and instantiates the sinks. A missing
// publishers file means degraded mode, not an error.
func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return publishers.NewFanout(nil), nil
	}

	reg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabled := reg.Enabled()
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, cfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   cfg.ID,
			"type": cfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})

	return publishers.NewFanout(pubs), nil
}

// Refresher exposes the wired refresher for one-shot callers.
func (h *Hub) Refresher() *refresher.Refresher {
	if h == nil {
		return nil
	}
	return h.refresher
}

// EnabledSourceIDs returns the ids the hub refreshes on its loop.
func (h *Hub) EnabledSourceIDs() []string {
	if h == nil || h.catalog == nil {
		return nil
	}
	return h.catalog.EnabledIDs()
}

// Close releases the cache backend for callers that do not enter Run.
func (h *Hub) Close() {
	h.closeStore()
}

// Run starts the refresh loop until the context is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	if h == nil || h.refresher == nil {
		return fmt.Errorf("hub is not initialized")
	}
	defer h.closeStore()

	sourceIDs := h.EnabledSourceIDs()
	if len(sourceIDs) == 0 {
		h.log.WarnObj("no enabled sources; hub idle", "sources_file", h.cfg.SourcesFile)
		<-ctx.Done()
		return ctx.Err()
	}

	h.log.InfoObj("hub loop starting", "hub_state", map[string]any{
		"sources_count":    len(sourceIDs),
		"publishers_count": h.fanout.Size(),
		"refresh_interval": h.interval.String(),
	})

	h.runOnce(ctx, sourceIDs)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.InfoObj("hub loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			h.runOnce(ctx, sourceIDs)
		}
	}
}

// runOnce performs a single batch refresh across all enabled sources.
func (h *Hub) runOnce(ctx context.Context, sourceIDs []string) {
	start := time.Now()
	h.log.InfoObj("batch refresh started", "batch_meta", map[string]any{
		"sources_count": len(sourceIDs),
		"started_at":    start.UTC(),
	})

	result := h.refresher.RefreshMany(ctx, sourceIDs)

	h.log.InfoObj("batch refresh completed", "batch_meta", map[string]any{
		"succeeded":  result.Succeeded,
		"failed":     result.Failed,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
}

// closeStore safely closes the cache backend, logging any errors encountered.
func (h *Hub) closeStore() {
	if h == nil || h.store == nil {
		return
	}
	if err := h.store.Close(); err != nil {
		h.log.ErrorObj("cache store close failed", "error", err)
	}
}
