package pipeline

import (
	"context"
	"time"

	"github.com/kabar-api/kabar-api/internal/logging"
)

// Scheduler runs one job immediately and then every Interval. It
// implements suture.Service. Job failures are recorded by the Runner and
// do not stop the schedule.
type Scheduler struct {
	runner   *Runner
	job      Job
	interval time.Duration
}

func NewScheduler(runner *Runner, job Job, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{runner: runner, job: job, interval: interval}
}

// Serve implements suture.Service.
func (s *Scheduler) Serve(ctx context.Context) error {
	logging.Info().Str("job", s.job.Name()).Dur("interval", s.interval).Msg("schedule started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		_, _ = s.runner.Run(ctx, s.job)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) String() string {
	return "schedule:" + s.job.Name()
}
