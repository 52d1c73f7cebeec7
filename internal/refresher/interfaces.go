package refresher

import (
	"context"

	"github.com/trendbeat-hq/trendbeat-source-hub/internal/catalog"
	"github.com/trendbeat-hq/trendbeat-source-hub/pkg/getters"
	"github.com/trendbeat-hq/trendbeat-source-hub/pkg/publishers"
)

// SourceResolver resolves a source id to its effective descriptor, following
// redirects and enforcing the enabled flag.
type SourceResolver interface {
	ResolveEffective(id string) (catalog.Source, error)
}

// GetterSource looks up the fetch implementation for an effective source id.
type GetterSource interface {
	Get(id string) (getters.Getter, bool)
}

// EventPublisher announces freshly fetched items downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}
