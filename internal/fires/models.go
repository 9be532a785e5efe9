package fires

import (
	"fmt"
	"time"

	"github.com/kabar-api/kabar-api/internal/regions"
)

const TableName = "viirs_snpp_raw"

// FireDetection is one VIIRS hotspot.
type FireDetection struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Latitude   float64   `gorm:"not null" json:"latitude" validate:"latitude"`
	Longitude  float64   `gorm:"not null" json:"longitude" validate:"longitude"`
	Brightness float32   `json:"brightness"`
	Scan       float32   `json:"scan"`
	Track      float32   `json:"track"`
	AcqDate    time.Time `gorm:"type:date;index;not null" json:"acq_date"`
	AcqTime    int32     `json:"acq_time" validate:"min=0,max=2359"`
	Satellite  string    `json:"satellite"`
	Instrument string    `json:"instrument"`
	Confidence string    `json:"confidence"`
	Version    string    `json:"version"`
	BrightT31  float32   `gorm:"column:bright_t31" json:"bright_t31"`
	FRP        float32   `gorm:"column:frp" json:"frp"`
	DayNight   string    `gorm:"column:daynight" json:"daynight"`
	Type       *int16    `gorm:"column:type" json:"type"`
	Province   string    `gorm:"index" json:"province"`
	District   string    `json:"district"`
}

func (FireDetection) TableName() string {
	return TableName
}

func (f *FireDetection) Coordinates() (float64, float64) {
	return f.Latitude, f.Longitude
}

func (f *FireDetection) SetRegion(r regions.Region) {
	f.Province = r.Province
	f.District = r.District
}

// Key identifies a detection for deduplication.
func Key(f *FireDetection) string {
	return fmt.Sprintf("%.5f|%.5f|%s|%04d|%s",
		f.Latitude, f.Longitude, f.AcqDate.Format(time.DateOnly), f.AcqTime, f.Satellite)
}
