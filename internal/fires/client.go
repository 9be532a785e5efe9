package fires

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kabar-api/kabar-api/internal/config"
	"github.com/kabar-api/kabar-api/internal/upstream"
)

// Client fetches the FIRMS country CSV.
type Client struct {
	up      *upstream.Client
	baseURL string
	token   string
	source  string
	country string
}

func NewClient(cfg config.FIRMSConfig) *Client {
	return &Client{
		up: upstream.New("firms", upstream.Options{
			Timeout: cfg.Timeout,
			Redact:  []string{cfg.Token},
		}),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		source:  cfg.Source,
		country: cfg.Country,
	}
}

// URL builds the country endpoint for dayRange days starting on date.
func (c *Client) URL(date time.Time, dayRange int) string {
	return fmt.Sprintf("%s/api/country/csv/%s/%s/%s/%d/%s",
		c.baseURL, c.token, c.source, c.country, dayRange, date.Format(time.DateOnly))
}

// Fetch downloads and parses detections for dayRange days starting on
// date (date through date+dayRange-1).
func (c *Client) Fetch(ctx context.Context, date time.Time, dayRange int) ([]RawDetection, error) {
	body, err := c.up.Get(ctx, c.URL(date, dayRange), "text/csv")
	if err != nil {
		return nil, err
	}
	rows, err := ParseCSV(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("firms: %w", err)
	}
	return rows, nil
}
