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
	githubTrendingSourceID = "github-trending"
	githubBaseURL          = "https://github.com"
	githubTrendingURL      = githubBaseURL + "/trending"
)

// githubTrendingGetter scrapes the GitHub trending repositories page.
type githubTrendingGetter struct {
	client HTTPClient
	url    string
}

// NewGitHubTrendingGetter builds a getter for GitHub trending repositories.
func NewGitHubTrendingGetter(client HTTPClient) Getter {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &githubTrendingGetter{
		client: client,
		url:    githubTrendingURL,
	}
}

func (g *githubTrendingGetter) Fetch(ctx context.Context) ([]domain.Item, error) {
	raw, err := fetchPage(ctx, g.client, g.url, githubTrendingSourceID, nil)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse github trending html: %w", err)
	}

	var items []domain.Item
	doc.Find("article.Box-row").Each(func(_ int, row *goquery.Selection) {
		link := row.Find("h2 a").First()
		href, _ := link.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}

		repo := strings.TrimPrefix(href, "/")
		title := strings.Join(strings.Fields(link.Text()), "")
		if title == "" {
			title = repo
		}

		item := domain.Item{
			ID:    repo,
			Title: title,
			URL:   githubBaseURL + href,
		}
		if desc := strings.TrimSpace(row.Find("p").First().Text()); desc != "" {
			item.Extra = map[string]any{"hover": desc}
		}
		items = append(items, item)
	})

	if len(items) == 0 {
		return nil, fmt.Errorf("github trending page returned no records")
	}
	return items, nil
}
