package articles

import (
	"context"
	"fmt"
	"time"

	"github.com/kabar-api/kabar-api/internal/db"
	"gorm.io/gorm"
)

// Store reads and appends articles.
type Store interface {
	// Since returns articles with published_date strictly after since.
	// Only URL is filled.
	Since(ctx context.Context, since time.Time) ([]*Article, error)
	Append(ctx context.Context, rows []*Article) (int, error)
}

// Reader serves the public date-range query.
type Reader interface {
	Between(ctx context.Context, start, end time.Time) ([]Summary, error)
}

type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(d *gorm.DB) *GormStore {
	return &GormStore{DB: d}
}

func (s *GormStore) Since(ctx context.Context, since time.Time) ([]*Article, error) {
	var rows []*Article
	err := s.DB.WithContext(ctx).
		Select("url").
		Where("published_date > ?", since.Format(time.DateOnly)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load recent articles: %w", err)
	}
	return rows, nil
}

func (s *GormStore) Append(ctx context.Context, rows []*Article) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := s.DB.WithContext(ctx).CreateInBatches(rows, 200)
	if res.Error != nil {
		return 0, fmt.Errorf("append articles: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

// Between returns articles with start <= published_date < end.
func (s *GormStore) Between(ctx context.Context, start, end time.Time) ([]Summary, error) {
	var out []Summary
	err := s.DB.WithContext(ctx).
		Model(&Article{}).
		Select("title", "url", "image", "published_time").
		Where("published_date >= ? AND published_date < ?", start.Format(time.DateOnly), end.Format(time.DateOnly)).
		Order("published_time DESC").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	return out, nil
}

func Migrate(d *gorm.DB) error {
	return db.Migrate(d, []interface{}{&Article{}})
}
