package articles

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed/rss"
)

// Item is one RSS search result.
type Item struct {
	Title     string
	Link      string
	Published *time.Time
	Publisher string
	Image     string
	Keyword   string
}

// ParseRSS decodes an RSS 2.0 feed, returning at most max items (all when
// max <= 0), each tagged with keyword.
func ParseRSS(body []byte, keyword string, max int) ([]Item, error) {
	feed, err := (&rss.Parser{}).Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decode rss: %w", err)
	}

	items := feed.Items
	if max > 0 && len(items) > max {
		items = items[:max]
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		item := Item{
			Title:     strings.TrimSpace(it.Title),
			Link:      strings.TrimSpace(it.Link),
			Published: it.PubDateParsed,
			Keyword:   keyword,
			Image:     mediaImage(it),
		}
		if it.Source != nil {
			item.Publisher = strings.TrimSpace(it.Source.Title)
		}
		out = append(out, item)
	}
	return out, nil
}

// mediaImage returns the first media:content image URL, if any.
func mediaImage(it *rss.Item) string {
	for _, m := range it.Extensions["media"]["content"] {
		url := m.Attrs["url"]
		medium := m.Attrs["medium"]
		if url != "" && (medium == "" || medium == "image") {
			return url
		}
	}
	return ""
}
