package pipeline

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/kabar-api/kabar-api/internal/logging"
	"github.com/kabar-api/kabar-api/internal/metrics"
)

// Runner executes jobs and records every run. Runs of the same job never
// overlap; a second caller waits for the first to finish.
type Runner struct {
	store RunStore
	jobs  map[string]Job
	order []string
	locks map[string]*sync.Mutex
	now   func() time.Time
}

// NewRunner registers jobs by name. store may be nil, in which case runs
// are only logged.
func NewRunner(store RunStore, jobs ...Job) *Runner {
	r := &Runner{
		store: store,
		jobs:  make(map[string]Job, len(jobs)),
		locks: make(map[string]*sync.Mutex, len(jobs)),
		now:   time.Now,
	}
	for _, j := range jobs {
		if _, dup := r.jobs[j.Name()]; dup {
			continue
		}
		r.jobs[j.Name()] = j
		r.locks[j.Name()] = &sync.Mutex{}
		r.order = append(r.order, j.Name())
	}
	return r
}

// Names lists registered jobs in registration order.
func (r *Runner) Names() []string {
	return append([]string(nil), r.order...)
}

// RunByName runs a registered job.
func (r *Runner) RunByName(ctx context.Context, name string) (*Run, error) {
	j, ok := r.jobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownJob, name)
	}
	return r.Run(ctx, j)
}

// Run executes job once. The returned Run is always non-nil; err is the
// job's error, if any. Panics inside the job are recovered and reported
// as failures.
func (r *Runner) Run(ctx context.Context, job Job) (*Run, error) {
	name := job.Name()
	if mu, ok := r.locks[name]; ok {
		mu.Lock()
		defer mu.Unlock()
	}

	id := logging.NewRunID()
	ctx = logging.ContextWithRunID(ctx, id)
	log := logging.Ctx(ctx).With().Str("job", name).Logger()

	run := &Run{ID: id, Job: name, StartedAt: r.now()}
	log.Info().Msg("pipeline started")

	res, err := safeRun(ctx, job)
	run.FinishedAt = r.now()
	run.Fetched = res.Fetched
	run.Cleaned = res.Cleaned
	run.Skipped = res.Skipped
	run.Appended = res.Appended

	if err != nil {
		run.Status = StatusFailed
		run.Error = err.Error()
		log.Error().Err(err).Dur("duration", run.Duration()).Msg("pipeline failed")
	} else {
		run.Status = StatusSucceeded
		log.Info().
			Int("fetched", res.Fetched).
			Int("cleaned", res.Cleaned).
			Int("skipped", res.Skipped).
			Int("appended", res.Appended).
			Dur("duration", run.Duration()).
			Msg("pipeline finished")
	}

	metrics.PipelineRuns.WithLabelValues(name, run.Status).Inc()
	metrics.PipelineDuration.WithLabelValues(name).Observe(run.Duration().Seconds())
	metrics.PipelineRows.WithLabelValues(name, "fetched").Add(float64(res.Fetched))
	metrics.PipelineRows.WithLabelValues(name, "cleaned").Add(float64(res.Cleaned))
	metrics.PipelineRows.WithLabelValues(name, "skipped").Add(float64(res.Skipped))
	metrics.PipelineRows.WithLabelValues(name, "appended").Add(float64(res.Appended))

	if r.store != nil {
		// Record even when the caller's context is already cancelled.
		recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		if recErr := r.store.Record(recCtx, run); recErr != nil {
			log.Warn().Err(recErr).Msg("could not record pipeline run")
		}
		cancel()
	}

	return run, err
}

func safeRun(ctx context.Context, job Job) (res Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic in %s: %v", job.Name(), p)
			logging.Ctx(ctx).Error().Str("stack", string(debug.Stack())).Msg("pipeline panicked")
		}
	}()
	return job.Run(ctx)
}
