package airquality

import (
	"context"
	"fmt"
	"time"

	"github.com/kabar-api/kabar-api/internal/db"
	"gorm.io/gorm"
)

// Store reads today's readings and appends new ones.
type Store interface {
	Since(ctx context.Context, since time.Time) ([]*Reading, error)
	Append(ctx context.Context, rows []*Reading) (int, error)
}

type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(d *gorm.DB) *GormStore {
	return &GormStore{DB: d}
}

func (s *GormStore) Since(ctx context.Context, since time.Time) ([]*Reading, error) {
	var rows []*Reading
	err := s.DB.WithContext(ctx).
		Select("address", "updated_at").
		Where("updated_at >= ?", since).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load today's readings: %w", err)
	}
	return rows, nil
}

func (s *GormStore) Append(ctx context.Context, rows []*Reading) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := s.DB.WithContext(ctx).CreateInBatches(rows, 500)
	if res.Error != nil {
		return 0, fmt.Errorf("append readings: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

func Migrate(d *gorm.DB) error {
	return db.Migrate(d, []interface{}{&Reading{}})
}
