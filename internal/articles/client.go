package articles

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/kabar-api/kabar-api/internal/config"
	"github.com/kabar-api/kabar-api/internal/upstream"
)

// Client searches the news RSS feed.
type Client struct {
	up         *upstream.Client
	baseURL    string
	language   string
	region     string
	maxResults int
	periodDays int
}

func NewClient(cfg config.NewsConfig) *Client {
	return &Client{
		up: upstream.New("news", upstream.Options{
			Timeout:           cfg.Timeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
		}),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		language:   cfg.Language,
		region:     cfg.Region,
		maxResults: cfg.MaxResults,
		periodDays: cfg.PeriodDays,
	}
}

// SearchURL builds the feed URL for keyword.
func (c *Client) SearchURL(keyword string) string {
	q := url.Values{}
	q.Set("q", fmt.Sprintf("%s when:%dd", keyword, c.periodDays))
	q.Set("hl", c.language)
	q.Set("gl", c.region)
	q.Set("ceid", c.region+":"+c.language)
	return c.baseURL + "/rss/search?" + q.Encode()
}

func (c *Client) Search(ctx context.Context, keyword string) ([]Item, error) {
	body, err := c.up.Get(ctx, c.SearchURL(keyword), "application/rss+xml")
	if err != nil {
		return nil, err
	}
	items, err := ParseRSS(body, keyword, c.maxResults)
	if err != nil {
		return nil, fmt.Errorf("news %q: %w", keyword, err)
	}
	return items, nil
}
