package getters

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/trendbeat-hq/trendbeat-source-hub/internal/domain"
)

const (
	hackerNewsSourceID = "hackernews"
	hackerNewsBaseURL  = "https://news.ycombinator.com"
)

// hackerNewsGetter scrapes the Hacker News front page.
type hackerNewsGetter struct {
	client  HTTPClient
	baseURL string
}

// NewHackerNewsGetter builds a getter for the Hacker News front page.
func NewHackerNewsGetter(client HTTPClient) Getter {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &hackerNewsGetter{
		client:  client,
		baseURL: hackerNewsBaseURL,
	}
}

func (g *hackerNewsGetter) Fetch(ctx context.Context) ([]domain.Item, error) {
	raw, err := fetchPage(ctx, g.client, g.baseURL, hackerNewsSourceID, nil)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse hackernews html: %w", err)
	}

	var items []domain.Item
	doc.Find(".athing").Each(func(_ int, row *goquery.Selection) {
		id, _ := row.Attr("id")
		title := strings.TrimSpace(row.Find(".titleline a").First().Text())
		if id == "" || title == "" {
			return
		}

		item := domain.Item{
			ID:    id,
			Title: title,
			URL:   fmt.Sprintf("%s/item?id=%s", g.baseURL, id),
		}
		if score := strings.TrimSpace(doc.Find("#score_" + id).Text()); score != "" {
			item.Extra = map[string]any{"info": score}
		}
		items = append(items, item)
	})

	if len(items) == 0 {
		return nil, fmt.Errorf("hackernews front page returned no records")
	}
	return items, nil
}
