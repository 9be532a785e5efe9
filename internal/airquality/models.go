package airquality

import (
	"strconv"
	"time"
)

const TableName = "air_quality_idn"

// Reading is one station observation.
type Reading struct {
	ID              int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	LatSensor       string `gorm:"column:lat_sensor" json:"lat_sensor" validate:"latitude"`
	LonSensor       string `gorm:"column:lon_sensor" json:"lon_sensor" validate:"longitude"`
	Address         string `json:"address"`
	City            string `json:"city"`
	Province        string `gorm:"index" json:"province"`
	AirQualityIndex int16  `gorm:"column:air_quality_index" json:"air_quality_index" validate:"min=0"`
	Category        string `json:"category"`
	// Station-local time of the observation.
	ObservedAt  time.Time `gorm:"column:updated_at;index" json:"updated_at"`
	FetchedDate time.Time `gorm:"column:fetched_date;type:date" json:"fetched_date"`
}

func (Reading) TableName() string {
	return TableName
}

// Key identifies a reading for deduplication.
func Key(r *Reading) string {
	return r.Address + "|" + strconv.FormatInt(r.ObservedAt.Unix(), 10)
}
