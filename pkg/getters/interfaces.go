package getters

import (
	"context"

	"github.com/trendbeat-hq/trendbeat-source-hub/internal/domain"
	"github.com/trendbeat-hq/trendbeat-source-hub/pkg/httpclient"
)

// Getter fetches the current item list for one source. Implementations carry
// no policy: freshness, caching, and publishing are decided by the caller.
// Concrete implementations live in source-specific files (e.g., hackernews.go).
type Getter interface {
	Fetch(ctx context.Context) ([]domain.Item, error)
}

// GetterFunc adapts a plain function to the Getter interface.
type GetterFunc func(ctx context.Context) ([]domain.Item, error)

func (f GetterFunc) Fetch(ctx context.Context) ([]domain.Item, error) { return f(ctx) }

// HTTPClient aliases the shared httpclient.Client interface for clarity within getters.
type HTTPClient = httpclient.Client
