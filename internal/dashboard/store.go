package dashboard

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Store holds the read queries behind the dashboard.
type Store interface {
	FirePoints(ctx context.Context, since time.Time) ([]FirePoint, error)
	FireCounts(ctx context.Context, since time.Time) (total, high int, err error)
	FireDaily(ctx context.Context, since time.Time) ([]DailyCount, error)
	FireTop(ctx context.Context, since time.Time, column string, limit int) ([]RegionCount, error)
	LatestStations(ctx context.Context, dayStart time.Time) ([]Station, error)
	LatestArticles(ctx context.Context, since time.Time) ([]ArticleCard, error)
	Temperatures(ctx context.Context) ([]Temperature, error)
}

type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(d *gorm.DB) *GormStore {
	return &GormStore{DB: d}
}

func day(t time.Time) string { return t.Format(time.DateOnly) }

func (s *GormStore) FirePoints(ctx context.Context, since time.Time) ([]FirePoint, error) {
	var out []FirePoint
	err := s.DB.WithContext(ctx).Raw(`
		SELECT latitude, longitude, frp, acq_date, province, district
		FROM viirs_snpp_raw
		WHERE acq_date > ?`, day(since)).Scan(&out).Error
	return out, err
}

func (s *GormStore) FireCounts(ctx context.Context, since time.Time) (int, int, error) {
	var row struct {
		Total int
		High  int
	}
	err := s.DB.WithContext(ctx).Raw(`
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE lower(confidence) IN ('h', 'high')) AS high
		FROM viirs_snpp_raw
		WHERE acq_date > ?`, day(since)).Scan(&row).Error
	return row.Total, row.High, err
}

func (s *GormStore) FireDaily(ctx context.Context, since time.Time) ([]DailyCount, error) {
	var out []DailyCount
	err := s.DB.WithContext(ctx).Raw(`
		SELECT acq_date, COUNT(*) AS count
		FROM viirs_snpp_raw
		WHERE acq_date > ?
		GROUP BY acq_date
		ORDER BY acq_date`, day(since)).Scan(&out).Error
	return out, err
}

var topColumns = map[string]bool{"province": true, "district": true}

func (s *GormStore) FireTop(ctx context.Context, since time.Time, column string, limit int) ([]RegionCount, error) {
	if !topColumns[column] {
		return nil, fmt.Errorf("unsupported region column %q", column)
	}
	var out []RegionCount
	err := s.DB.WithContext(ctx).Raw(fmt.Sprintf(`
		SELECT %[1]s AS name, COUNT(*) AS count
		FROM viirs_snpp_raw
		WHERE acq_date > ? AND %[1]s IS NOT NULL AND %[1]s <> ''
		GROUP BY %[1]s
		ORDER BY count DESC, name
		LIMIT ?`, column), day(since), limit).Scan(&out).Error
	return out, err
}

func (s *GormStore) LatestStations(ctx context.Context, dayStart time.Time) ([]Station, error) {
	var out []Station
	err := s.DB.WithContext(ctx).Raw(`
		WITH ranked AS (
			SELECT address, city, province, air_quality_index, category, updated_at,
			       ROW_NUMBER() OVER (PARTITION BY address, city, province ORDER BY updated_at DESC) AS rn
			FROM air_quality_idn
			WHERE updated_at >= ? AND updated_at < ?
		)
		SELECT address, city, province, air_quality_index, category, updated_at
		FROM ranked
		WHERE rn = 1
		ORDER BY air_quality_index DESC`, dayStart, dayStart.AddDate(0, 0, 1)).Scan(&out).Error
	return out, err
}

func (s *GormStore) LatestArticles(ctx context.Context, since time.Time) ([]ArticleCard, error) {
	var out []ArticleCard
	err := s.DB.WithContext(ctx).Raw(`
		SELECT title, url, image, published_time
		FROM articles
		WHERE published_date > ?
		ORDER BY published_time DESC`, day(since)).Scan(&out).Error
	return out, err
}

func (s *GormStore) Temperatures(ctx context.Context) ([]Temperature, error) {
	var out []Temperature
	err := s.DB.WithContext(ctx).Raw(`
		SELECT date, max_temp_c
		FROM idn_gsod
		ORDER BY date DESC`).Scan(&out).Error
	return out, err
}
