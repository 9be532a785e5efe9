package fires

import (
	"strconv"
	"strings"
	"time"

	"github.com/kabar-api/kabar-api/internal/validation"
)

// Clean casts raw records to typed rows. Records that fail to cast or
// validate are dropped; the second return value counts them.
func Clean(raw []RawDetection) ([]*FireDetection, int) {
	out := make([]*FireDetection, 0, len(raw))
	dropped := 0
	for _, r := range raw {
		f, ok := cleanOne(r)
		if !ok || validation.Struct(f) != nil {
			dropped++
			continue
		}
		out = append(out, f)
	}
	return out, dropped
}

func cleanOne(r RawDetection) (*FireDetection, bool) {
	var (
		f   FireDetection
		err error
		ok  = true
	)
	f64 := func(s string) float64 {
		v, e := strconv.ParseFloat(s, 64)
		if e != nil {
			ok = false
		}
		return v
	}
	f32 := func(s string) float32 {
		v, e := strconv.ParseFloat(s, 32)
		if e != nil {
			ok = false
		}
		return float32(v)
	}

	f.Latitude = f64(r.Latitude)
	f.Longitude = f64(r.Longitude)
	f.Brightness = f32(r.Brightness)
	f.Scan = f32(r.Scan)
	f.Track = f32(r.Track)
	f.BrightT31 = f32(r.BrightT31)
	f.FRP = f32(r.FRP)
	if !ok {
		return nil, false
	}

	f.AcqDate, err = time.Parse(time.DateOnly, r.AcqDate)
	if err != nil {
		return nil, false
	}
	t, err := strconv.ParseInt(r.AcqTime, 10, 32)
	if err != nil {
		return nil, false
	}
	f.AcqTime = int32(t)

	f.Satellite = r.Satellite
	f.Instrument = r.Instrument
	f.Confidence = r.Confidence
	f.Version = r.Version
	f.DayNight = strings.ToUpper(r.DayNight)

	// NRT feeds carry no type; the archives do.
	if r.Type != "" {
		if v, err := strconv.ParseInt(r.Type, 10, 16); err == nil {
			typ := int16(v)
			f.Type = &typ
		}
	}
	return &f, true
}
