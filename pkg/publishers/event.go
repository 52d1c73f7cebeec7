package publishers

import (
	"time"

	"github.com/trendbeat-hq/trendbeat-source-hub/internal/domain"
)

// EventTypeSourceData tags source-data events so consumers can distinguish
// them from unrelated event kinds on a shared channel.
const EventTypeSourceData = "source.data.fetched"

// Event is the payload published after a successful refresh. Delivery is
// at-least-once; consumers de-duplicate by (sourceId, item id).
type Event struct {
	SourceID  string        `json:"sourceId"`
	Items     []domain.Item `json:"items"`
	Timestamp int64         `json:"timestamp"` // epoch millis
}

// NewEvent constructs an Event for the given source and items.
func NewEvent(sourceID string, items []domain.Item, at time.Time) Event {
	return Event{
		SourceID:  sourceID,
		Items:     items,
		Timestamp: at.UnixMilli(),
	}
}
