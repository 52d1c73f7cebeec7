package getters

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/trendbeat-hq/trendbeat-source-hub/pkg/httpclient"
)

// Registry maps effective source ids to their getters. It is constructed once
// and injected; registration is insert-or-replace.
type Registry struct {
	mu      sync.RWMutex
	getters map[string]Getter
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{getters: make(map[string]Getter)}
}

// Register binds a getter to a source id, replacing any prior binding.
func (r *Registry) Register(id string, g Getter) {
	if r == nil || g == nil {
		return
	}
	key := strings.TrimSpace(id)
	if key == "" {
		return
	}

	r.mu.Lock()
	r.getters[key] = g
	r.mu.Unlock()
}

// Get returns the getter bound to the source id.
func (r *Registry) Get(id string) (Getter, bool) {
	if r == nil {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.getters[strings.TrimSpace(id)]
	return g, ok
}

// Has reports whether a getter is bound to the source id.
func (r *Registry) Has(id string) bool {
	_, ok := r.Get(id)
	return ok
}

// IDs returns all bound source ids, sorted.
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.getters))
	for id := range r.getters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DefaultHTTPClient returns a tuned http.Client for source getters.
func DefaultHTTPClient() HTTPClient { return httpclient.NewRestyClient(15 * time.Second) }

// DefaultRegistry wires up the built-in source getters.
func DefaultRegistry(client HTTPClient) *Registry {
	if client == nil {
		client = DefaultHTTPClient()
	}

	reg := NewRegistry()
	reg.Register(hackerNewsSourceID, NewHackerNewsGetter(client))
	reg.Register(solidotSourceID, NewSolidotGetter(client))
	reg.Register(githubTrendingSourceID, NewGitHubTrendingGetter(client))
	return reg
}
