package airquality

import (
	"context"
	"fmt"
	"time"

	"github.com/kabar-api/kabar-api/internal/dedup"
	"github.com/kabar-api/kabar-api/internal/logging"
	"github.com/kabar-api/kabar-api/internal/pipeline"
)

const JobName = "air_quality"

type Fetcher interface {
	Fetch(ctx context.Context) ([]Feature, error)
}

// Pipeline appends station readings not yet stored.
type Pipeline struct {
	Fetcher  Fetcher
	Store    Store
	Location *time.Location
	Now      func() time.Time
}

func (p *Pipeline) Name() string { return JobName }

func (p *Pipeline) Run(ctx context.Context) (pipeline.Result, error) {
	var res pipeline.Result
	loc := p.Location
	if loc == nil {
		loc = Location("")
	}
	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}
	now = now.In(loc)

	features, err := p.Fetcher.Fetch(ctx)
	if err != nil {
		return res, fmt.Errorf("fetch readings: %w", err)
	}
	res.Fetched = len(features)

	rows, dropped := Clean(features, now, loc)
	res.Cleaned = len(rows)
	if dropped > 0 {
		logging.Ctx(ctx).Debug().Int("dropped", dropped).Msg("air quality cleaned")
	}

	existing, err := p.Store.Since(ctx, window(rows, now))
	if err != nil {
		return res, err
	}
	fresh := dedup.Fresh(rows, existing, Key)
	res.Skipped = len(rows) - len(fresh)

	n, err := p.Store.Append(ctx, fresh)
	res.Appended = n
	return res, err
}

// window is the start of the stored range to dedup against: midnight of
// now, or the oldest incoming observation if a station reports a stale one.
func window(rows []*Reading, now time.Time) time.Time {
	y, m, d := now.Date()
	since := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	for _, r := range rows {
		if r.ObservedAt.Before(since) {
			since = r.ObservedAt
		}
	}
	return since
}
