// Package jobs wires the ETL pipelines to their clients and stores.
package jobs

import (
	"fmt"

	"github.com/kabar-api/kabar-api/internal/airquality"
	"github.com/kabar-api/kabar-api/internal/articles"
	"github.com/kabar-api/kabar-api/internal/config"
	"github.com/kabar-api/kabar-api/internal/fires"
	"github.com/kabar-api/kabar-api/internal/logging"
	"github.com/kabar-api/kabar-api/internal/pipeline"
	"github.com/kabar-api/kabar-api/internal/regions"
	"gorm.io/gorm"
)

// Migrate creates every table the pipelines write.
func Migrate(d *gorm.DB) error {
	steps := []struct {
		name string
		fn   func(*gorm.DB) error
	}{
		{"runs", func(d *gorm.DB) error { return pipeline.NewGormRunStore(d).Migrate() }},
		{"fires", fires.Migrate},
		{"air_quality", airquality.Migrate},
		{"articles", articles.Migrate},
	}
	for _, s := range steps {
		if err := s.fn(d); err != nil {
			return fmt.Errorf("migrate %s: %w", s.name, err)
		}
	}
	return nil
}

// LoadRegions reads the boundary file. With no path configured the
// spatial join is skipped and a nil index is returned.
func LoadRegions(cfg config.RegionsConfig) (*regions.Index, error) {
	if cfg.BoundariesPath == "" {
		logging.Warn().Msg("no boundaries_path configured; fires will not get province/district")
		return nil, nil
	}
	idx, err := regions.Load(cfg.BoundariesPath, cfg.ProvinceProperty, cfg.DistrictProperty)
	if err != nil {
		return nil, err
	}
	logging.Info().Str("path", cfg.BoundariesPath).Int("features", idx.Len()).Msg("boundaries loaded")
	return idx, nil
}

// Build returns the scheduled pipelines. The fires job is left out when
// no FIRMS key is configured.
func Build(cfg *config.Config, d *gorm.DB, idx *regions.Index) []pipeline.Job {
	var out []pipeline.Job
	if cfg.RequireFIRMSToken() == nil {
		out = append(out, Fires(cfg, d, idx))
	} else {
		logging.Warn().Msg("FIRMS token not set; fires pipeline disabled")
	}
	out = append(out, AirQuality(cfg, d), Articles(cfg, d))
	return out
}

func Fires(cfg *config.Config, d *gorm.DB, idx *regions.Index) *fires.Pipeline {
	return &fires.Pipeline{
		Fetcher:  fires.NewClient(cfg.FIRMS),
		Store:    fires.NewGormStore(d),
		Regions:  idx,
		DayRange: cfg.FIRMS.DayRange,
		Lookback: cfg.FIRMS.Lookback,
	}
}

func AirQuality(cfg *config.Config, d *gorm.DB) *airquality.Pipeline {
	return &airquality.Pipeline{
		Fetcher:  airquality.NewClient(cfg.AirQuality),
		Store:    airquality.NewGormStore(d),
		Location: airquality.Location(cfg.AirQuality.Timezone),
	}
}

func Articles(cfg *config.Config, d *gorm.DB) *articles.Pipeline {
	return &articles.Pipeline{
		Searcher: articles.NewClient(cfg.News),
		Store:    articles.NewGormStore(d),
		Keywords: cfg.News.Keywords,
		Lookback: cfg.News.Lookback,
	}
}

func FireHistory(glob string, d *gorm.DB, idx *regions.Index) *fires.HistoryImport {
	return &fires.HistoryImport{
		Glob:    glob,
		Store:   fires.NewGormStore(d),
		Regions: idx,
	}
}

// Schedules pairs each job with its configured interval.
func Schedules(cfg config.SchedulerConfig, runner *pipeline.Runner, list []pipeline.Job) []*pipeline.Scheduler {
	out := make([]*pipeline.Scheduler, 0, len(list))
	for _, j := range list {
		every := cfg.FiresInterval
		switch j.Name() {
		case airquality.JobName:
			every = cfg.AirQualityInterval
		case articles.JobName:
			every = cfg.ArticlesInterval
		}
		out = append(out, pipeline.NewScheduler(runner, j, every))
	}
	return out
}
