package pipeline

import (
	"time"

	"github.com/google/uuid"
)

const Schema = "etl"

const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Run is the record of one pipeline execution.
type Run struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Job        string    `gorm:"index;not null" json:"job"`
	Status     string    `gorm:"not null" json:"status"`
	Fetched    int       `json:"fetched"`
	Cleaned    int       `json:"cleaned"`
	Skipped    int       `json:"skipped"`
	Appended   int       `json:"appended"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `gorm:"index" json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

func (Run) TableName() string {
	return Schema + ".pipeline_runs"
}

// Duration is the wall time of the run.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
