package fires

import (
	"github.com/kabar-api/kabar-api/internal/db"
	"gorm.io/gorm"
)

func Migrate(d *gorm.DB) error {
	return db.Migrate(d, []interface{}{&FireDetection{}},
		`CREATE INDEX IF NOT EXISTS viirs_snpp_raw_dedup_idx ON viirs_snpp_raw (acq_date, acq_time, satellite)`,
	)
}
