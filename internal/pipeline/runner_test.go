package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu   sync.Mutex
	runs []Run
	err  error
}

func (m *memStore) Record(_ context.Context, run *Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.runs = append(m.runs, *run)
	return nil
}

func (m *memStore) Latest(_ context.Context, limit int) ([]Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > len(m.runs) {
		limit = len(m.runs)
	}
	return append([]Run(nil), m.runs[:limit]...), nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.runs)
}

func okJob(name string, res Result) Job {
	return JobFunc{JobName: name, Fn: func(context.Context) (Result, error) { return res, nil }}
}

func TestRunnerRecordsSuccess(t *testing.T) {
	store := &memStore{}
	r := NewRunner(store, okJob("fires", Result{Fetched: 10, Cleaned: 9, Skipped: 4, Appended: 5}))

	run, err := r.RunByName(context.Background(), "fires")
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, run.Status)
	assert.Equal(t, 5, run.Appended)
	assert.NotEmpty(t, run.ID.String())
	assert.False(t, run.FinishedAt.Before(run.StartedAt))

	require.Len(t, store.runs, 1)
	assert.Equal(t, "fires", store.runs[0].Job)
}

func TestRunnerRecordsFailure(t *testing.T) {
	store := &memStore{}
	boom := errors.New("upstream down")
	r := NewRunner(store, JobFunc{JobName: "articles", Fn: func(context.Context) (Result, error) {
		return Result{Fetched: 3}, boom
	}})

	run, err := r.RunByName(context.Background(), "articles")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StatusFailed, run.Status)
	assert.Equal(t, "upstream down", run.Error)
	assert.Equal(t, 3, run.Fetched)
	assert.Equal(t, 1, store.count())
}

func TestRunnerRecoversPanic(t *testing.T) {
	r := NewRunner(nil, JobFunc{JobName: "bad", Fn: func(context.Context) (Result, error) {
		panic("nil map")
	}})

	run, err := r.RunByName(context.Background(), "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil map")
	assert.Equal(t, StatusFailed, run.Status)
}

func TestRunnerUnknownJob(t *testing.T) {
	r := NewRunner(nil, okJob("fires", Result{}))
	_, err := r.RunByName(context.Background(), "weather")
	assert.ErrorIs(t, err, ErrUnknownJob)
}

func TestRunnerStoreErrorDoesNotFailRun(t *testing.T) {
	r := NewRunner(&memStore{err: errors.New("db gone")}, okJob("fires", Result{}))
	run, err := r.RunByName(context.Background(), "fires")
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, run.Status)
}

func TestRunnerNames(t *testing.T) {
	r := NewRunner(nil, okJob("fires", Result{}), okJob("air_quality", Result{}), okJob("fires", Result{}))
	assert.Equal(t, []string{"fires", "air_quality"}, r.Names())
}

func TestSchedulerRunsImmediatelyAndStops(t *testing.T) {
	var calls atomic.Int32
	job := JobFunc{JobName: "tick", Fn: func(context.Context) (Result, error) {
		calls.Add(1)
		return Result{}, nil
	}}
	store := &memStore{}
	s := NewScheduler(NewRunner(store, job), job, time.Hour)
	assert.Equal(t, "schedule:tick", s.String())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Equal(t, 1, store.count())
}

func TestSchedulerKeepsGoingAfterFailure(t *testing.T) {
	var calls atomic.Int32
	job := JobFunc{JobName: "flaky", Fn: func(context.Context) (Result, error) {
		calls.Add(1)
		return Result{}, errors.New("nope")
	}}
	s := NewScheduler(NewRunner(nil, job), job, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Serve(ctx)

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
}
