// Package pipeline runs ETL jobs, records each run, and schedules jobs
// on an interval under the supervisor.
package pipeline

import (
	"context"
	"errors"
)

var ErrUnknownJob = errors.New("unknown pipeline")

// Job is one ETL pipeline: fetch, clean, join, dedup, append.
type Job interface {
	Name() string
	Run(ctx context.Context) (Result, error)
}

// Result counts rows through the stages of a run. Fetched minus Cleaned
// is what the cleaner dropped; Skipped is what dedup removed.
type Result struct {
	Fetched  int `json:"fetched"`
	Cleaned  int `json:"cleaned"`
	Skipped  int `json:"skipped"`
	Appended int `json:"appended"`
}

// JobFunc adapts a function to Job.
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) (Result, error)
}

func (f JobFunc) Name() string { return f.JobName }

func (f JobFunc) Run(ctx context.Context) (Result, error) { return f.Fn(ctx) }
