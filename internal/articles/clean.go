package articles

import (
	"slices"
	"strings"
	"time"
)

// StripPublisher removes the trailing " - Publisher" the feed appends to
// titles. Titles whose suffix is not the item's publisher are kept whole.
func StripPublisher(title, publisher string) string {
	title = strings.TrimSpace(title)
	if publisher == "" {
		return title
	}
	if t, ok := strings.CutSuffix(title, " - "+publisher); ok {
		return strings.TrimSpace(t)
	}
	return title
}

// Clean turns feed items into articles. Items sharing a URL merge into
// one article listing every keyword that found it, in first-seen order.
// Items without title, URL, or a parseable date are dropped; the second
// return value counts them.
func Clean(items []Item) ([]*Article, int) {
	byURL := make(map[string]*Article, len(items))
	out := make([]*Article, 0, len(items))
	dropped := 0

	for _, it := range items {
		if it.Link == "" || it.Title == "" {
			dropped++
			continue
		}
		if a, ok := byURL[it.Link]; ok {
			if it.Keyword != "" && !slices.Contains(a.Keywords, it.Keyword) {
				a.Keywords = append(a.Keywords, it.Keyword)
			}
			continue
		}
		if it.Published == nil {
			dropped++
			continue
		}
		published := it.Published.UTC()

		a := &Article{
			Title:         StripPublisher(it.Title, it.Publisher),
			URL:           it.Link,
			Publisher:     it.Publisher,
			PublishedTime: published,
			PublishedDate: time.Date(published.Year(), published.Month(), published.Day(), 0, 0, 0, 0, time.UTC),
		}
		if it.Image != "" {
			img := it.Image
			a.Image = &img
		}
		if it.Keyword != "" {
			a.Keywords = []string{it.Keyword}
		}
		byURL[it.Link] = a
		out = append(out, a)
	}
	return out, dropped
}
