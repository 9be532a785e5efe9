package airquality

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kabar-api/kabar-api/internal/regions"
	"github.com/kabar-api/kabar-api/internal/validation"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const timeLayout = "2006-01-02 15:04:05"

// Location resolves a zone name, falling back to WIB (UTC+7) when the
// tz database is unavailable.
func Location(name string) *time.Location {
	if name == "" {
		name = "Asia/Jakarta"
	}
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.FixedZone("WIB", 7*60*60)
}

// TitleCase title-cases s with Indonesian rules.
func TitleCase(s string) string {
	return cases.Title(language.Indonesian).String(strings.TrimSpace(s))
}

// Clean converts features to readings. Features without an AQI or
// coordinates, with a malformed timestamp, or failing validation are
// dropped; the second return value counts them.
func Clean(features []Feature, fetched time.Time, loc *time.Location) ([]*Reading, int) {
	if loc == nil {
		loc = Location("")
	}
	y, m, d := fetched.In(loc).Date()
	fetchedDate := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	out := make([]*Reading, 0, len(features))
	dropped := 0
	for _, f := range features {
		p := f.Properties
		if !p.Nilai.Valid || len(f.Geometry.Coordinates) < 2 {
			dropped++
			continue
		}
		observed, err := time.ParseInLocation(timeLayout, strings.TrimSpace(p.Waktu), loc)
		if err != nil {
			dropped++
			continue
		}
		aqi := p.Nilai.Value
		if math.IsNaN(aqi) || aqi < math.MinInt16 || aqi > math.MaxInt16 {
			dropped++
			continue
		}
		lon, lat := f.Geometry.Coordinates[0], f.Geometry.Coordinates[1]
		r := &Reading{
			LatSensor:       strconv.FormatFloat(lat, 'f', -1, 64),
			LonSensor:       strconv.FormatFloat(lon, 'f', -1, 64),
			Address:         p.Alamat,
			City:            TitleCase(p.Kota),
			Province:        regions.NormalizeProvince(TitleCase(p.Provinsi)),
			AirQualityIndex: int16(aqi),
			Category:        TitleCase(p.Cat),
			ObservedAt:      observed,
			FetchedDate:     fetchedDate,
		}
		if validation.Struct(r) != nil {
			dropped++
			continue
		}
		out = append(out, r)
	}
	return out, dropped
}
