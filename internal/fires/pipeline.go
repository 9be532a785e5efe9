package fires

import (
	"context"
	"fmt"
	"time"

	"github.com/kabar-api/kabar-api/internal/dedup"
	"github.com/kabar-api/kabar-api/internal/logging"
	"github.com/kabar-api/kabar-api/internal/pipeline"
	"github.com/kabar-api/kabar-api/internal/regions"
)

const JobName = "fires"

// Fetcher returns raw detections for dayRange days starting on date.
type Fetcher interface {
	Fetch(ctx context.Context, date time.Time, dayRange int) ([]RawDetection, error)
}

// Pipeline pulls yesterday's detections and appends the ones not yet
// stored.
type Pipeline struct {
	Fetcher  Fetcher
	Store    Store
	Regions  *regions.Index
	DayRange int
	Lookback int
	Now      func() time.Time
}

func (p *Pipeline) Name() string { return JobName }

func (p *Pipeline) Run(ctx context.Context) (pipeline.Result, error) {
	var res pipeline.Result
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	today := truncateDay(now())
	date := today.AddDate(0, 0, -1)

	raw, err := p.Fetcher.Fetch(ctx, date, p.DayRange)
	if err != nil {
		return res, fmt.Errorf("fetch detections: %w", err)
	}
	res.Fetched = len(raw)

	rows, dropped := Clean(raw)
	res.Cleaned = len(rows)
	matched := regions.Annotate(p.Regions, rows)

	existing, err := p.Store.Since(ctx, today.AddDate(0, 0, -p.Lookback))
	if err != nil {
		return res, err
	}
	fresh := dedup.Fresh(rows, existing, Key)
	res.Skipped = len(rows) - len(fresh)

	logging.Ctx(ctx).Debug().
		Int("dropped", dropped).
		Int("in_region", matched).
		Int("existing", len(existing)).
		Msg("fires cleaned")

	n, err := p.Store.Append(ctx, fresh)
	res.Appended = n
	return res, err
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
