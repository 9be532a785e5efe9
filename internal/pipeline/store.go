package pipeline

import (
	"context"
	"fmt"

	"github.com/kabar-api/kabar-api/internal/db"
	"gorm.io/gorm"
)

// RunStore persists run records.
type RunStore interface {
	Record(ctx context.Context, run *Run) error
	Latest(ctx context.Context, limit int) ([]Run, error)
}

// GormRunStore keeps runs in etl.pipeline_runs.
type GormRunStore struct {
	DB *gorm.DB
}

func NewGormRunStore(d *gorm.DB) *GormRunStore {
	return &GormRunStore{DB: d}
}

// Migrate creates the etl schema and the runs table.
func (s *GormRunStore) Migrate() error {
	if err := db.EnsureSchema(s.DB, Schema); err != nil {
		return fmt.Errorf("create %s schema: %w", Schema, err)
	}
	return db.Migrate(s.DB, []interface{}{&Run{}})
}

func (s *GormRunStore) Record(ctx context.Context, run *Run) error {
	return s.DB.WithContext(ctx).Create(run).Error
}

func (s *GormRunStore) Latest(ctx context.Context, limit int) ([]Run, error) {
	var runs []Run
	err := s.DB.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}
