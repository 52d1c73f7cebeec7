package getters

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/trendbeat-hq/trendbeat-source-hub/internal/domain"
)

const (
	solidotSourceID = "solidot"
	solidotFeedURL  = "https://www.solidot.org/index.rss"
)

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
}

// solidotGetter reads the Solidot RSS feed.
type solidotGetter struct {
	client  HTTPClient
	feedURL string
}

// NewSolidotGetter builds a getter for the Solidot feed.
func NewSolidotGetter(client HTTPClient) Getter {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &solidotGetter{
		client:  client,
		feedURL: solidotFeedURL,
	}
}

func (g *solidotGetter) Fetch(ctx context.Context) ([]domain.Item, error) {
	raw, err := fetchPage(ctx, g.client, g.feedURL, solidotSourceID, nil)
	if err != nil {
		return nil, err
	}

	var feed rssFeed
	if err := xml.Unmarshal(raw, &feed); err != nil {
		return nil, fmt.Errorf("decode solidot rss: %w", err)
	}

	items := make([]domain.Item, 0, len(feed.Channel.Items))
	for _, entry := range feed.Channel.Items {
		link := strings.TrimSpace(entry.Link)
		title := strings.TrimSpace(entry.Title)
		if link == "" || title == "" {
			continue
		}

		items = append(items, domain.Item{
			ID:      link,
			Title:   title,
			URL:     link,
			PubDate: parseRSSDate(entry.PubDate),
		})
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("solidot feed returned no records")
	}
	return items, nil
}

// parseRSSDate parses the common RSS pubDate layouts, returning epoch millis
// or 0 when unparseable.
func parseRSSDate(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}
