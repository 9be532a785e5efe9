package articles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kabar-api/kabar-api/internal/dedup"
	"github.com/kabar-api/kabar-api/internal/logging"
	"github.com/kabar-api/kabar-api/internal/pipeline"
)

const JobName = "articles"

type Searcher interface {
	Search(ctx context.Context, keyword string) ([]Item, error)
}

// Pipeline searches every keyword and appends articles whose URL was not
// stored in the last Lookback days.
type Pipeline struct {
	Searcher Searcher
	Store    Store
	Keywords []string
	Lookback int
	Now      func() time.Time
}

func (p *Pipeline) Name() string { return JobName }

func (p *Pipeline) Run(ctx context.Context) (pipeline.Result, error) {
	var res pipeline.Result
	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}

	// A failing keyword does not sink the others.
	var (
		items []Item
		errs  []error
	)
	for _, kw := range p.Keywords {
		found, err := p.Searcher.Search(ctx, kw)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("keyword", kw).Msg("news search failed")
			errs = append(errs, fmt.Errorf("search %q: %w", kw, err))
			continue
		}
		items = append(items, found...)
	}
	if len(errs) == len(p.Keywords) && len(errs) > 0 {
		return res, errors.Join(errs...)
	}
	res.Fetched = len(items)

	rows, _ := Clean(items)
	res.Cleaned = len(rows)

	y, m, d := now.Date()
	since := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -p.Lookback)
	existing, err := p.Store.Since(ctx, since)
	if err != nil {
		return res, err
	}
	fresh := dedup.Fresh(rows, existing, Key)
	res.Skipped = len(rows) - len(fresh)

	n, err := p.Store.Append(ctx, fresh)
	res.Appended = n
	return res, err
}
