package dashboard

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

var ErrInvalidDays = errors.New("days must be one of 7, 15, 30")

// AllowedDays are the periods offered by the dashboard filter.
var AllowedDays = []int{7, 15, 30}

const DefaultDays = 7

// ParseDays reads the days query value. Empty means DefaultDays.
func ParseDays(s string) (int, error) {
	if s == "" {
		return DefaultDays, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrInvalidDays
	}
	for _, d := range AllowedDays {
		if n == d {
			return n, nil
		}
	}
	return 0, ErrInvalidDays
}

// CardTitle is the heading of the fire count card.
func CardTitle(days int) string {
	return fmt.Sprintf("Titik Api Terdeteksi %d Hari Terakhir", days)
}

type FirePoint struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	FRP       float32   `gorm:"column:frp" json:"frp"`
	AcqDate   time.Time `json:"acq_date"`
	Province  string    `json:"province"`
	District  string    `json:"district"`
}

type DailyCount struct {
	Date  time.Time `gorm:"column:acq_date" json:"date"`
	Count int       `json:"count"`
}

type RegionCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type FireSummary struct {
	Title          string        `json:"title"`
	Days           int           `json:"days"`
	Total          int           `json:"total"`
	HighConfidence int           `json:"high_confidence"`
	Daily          []DailyCount  `json:"daily"`
	TopProvinces   []RegionCount `json:"top_provinces"`
	TopDistricts   []RegionCount `json:"top_districts"`
}

type Station struct {
	Address         string    `json:"address"`
	City            string    `json:"city"`
	Province        string    `json:"province"`
	AirQualityIndex int16     `gorm:"column:air_quality_index" json:"air_quality_index"`
	Category        string    `json:"category"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"updated_at"`
	Color           string    `gorm:"-" json:"color"`
}

var categoryColors = map[string]string{
	"Sangat Tidak Sehat": "secondary",
	"Tidak Sehat":        "danger",
	"Sedang":             "warning",
	"Baik":               "success",
	"Berbahaya":          "black",
}

// CategoryColor maps an AQI category to its card colour.
func CategoryColor(category string) string {
	if c, ok := categoryColors[category]; ok {
		return c
	}
	return "info"
}

type ArticleCard struct {
	Title         string    `json:"title"`
	URL           string    `gorm:"column:url" json:"url"`
	Image         *string   `json:"image"`
	PublishedTime time.Time `json:"published_time"`
}

type Temperature struct {
	Date     time.Time `json:"date"`
	MaxTempC float64   `gorm:"column:max_temp_c" json:"max_temp_c"`
}
