package domain

// Domain contains core models shared across the hub.

// Item is one trending entry produced by a source getter. Items are immutable
// after creation; downstream consumers de-duplicate by (sourceId, item id).
type Item struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	URL       string         `json:"url"`
	MobileURL string         `json:"mobileUrl,omitempty"`
	PubDate   int64          `json:"pubDate,omitempty"` // epoch millis; 0 when the source reports none
	Extra     map[string]any `json:"extra,omitempty"`
}
