package fires

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/gorm"
)

// Store reads recent detections and appends new ones.
type Store interface {
	// Since returns detections with acq_date strictly after since. Only
	// the dedup key columns are filled.
	Since(ctx context.Context, since time.Time) ([]*FireDetection, error)
	Append(ctx context.Context, rows []*FireDetection) (int, error)
}

type GormStore struct {
	DB        *gorm.DB
	BatchSize int
}

func NewGormStore(d *gorm.DB) *GormStore {
	return &GormStore{DB: d, BatchSize: 1000}
}

func (s *GormStore) Since(ctx context.Context, since time.Time) ([]*FireDetection, error) {
	var rows []*FireDetection
	err := s.DB.WithContext(ctx).
		Select("latitude", "longitude", "acq_date", "acq_time", "satellite").
		Where("acq_date > ?", since.Format(time.DateOnly)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load recent detections: %w", err)
	}
	return rows, nil
}

func (s *GormStore) Append(ctx context.Context, rows []*FireDetection) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := s.DB.WithContext(ctx).CreateInBatches(rows, s.BatchSize)
	if res.Error != nil {
		return 0, fmt.Errorf("append detections: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

var copyColumns = []string{
	"latitude", "longitude", "brightness", "scan", "track", "acq_date", "acq_time",
	"satellite", "instrument", "confidence", "version", "bright_t31", "frp",
	"daynight", "type", "province", "district",
}

// CopyAppend bulk-loads rows with COPY. Used for archive imports where
// the row count makes INSERT batches slow.
func (s *GormStore) CopyAppend(ctx context.Context, rows []*FireDetection) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return 0, fmt.Errorf("get sql.DB: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	values := make([][]any, 0, len(rows))
	for _, f := range rows {
		var typ any
		if f.Type != nil {
			typ = *f.Type
		}
		values = append(values, []any{
			f.Latitude, f.Longitude, f.Brightness, f.Scan, f.Track, f.AcqDate, f.AcqTime,
			f.Satellite, f.Instrument, f.Confidence, f.Version, f.BrightT31, f.FRP,
			f.DayNight, typ, f.Province, f.District,
		})
	}

	var n int64
	err = conn.Raw(func(driverConn any) error {
		direct, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return fmt.Errorf("unexpected postgres driver %T", driverConn)
		}
		n, err = direct.Conn().CopyFrom(ctx, pgx.Identifier{TableName}, copyColumns, pgx.CopyFromRows(values))
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("copy detections: %w", err)
	}
	return int(n), nil
}
