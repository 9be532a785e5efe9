package fires

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNotCSV is returned when the body has no latitude column. FIRMS
// answers bad keys and quota errors with plain text.
var ErrNotCSV = errors.New("response is not a FIRMS CSV (no latitude column)")

// RawDetection is one CSV record before type casting.
type RawDetection struct {
	Latitude   string
	Longitude  string
	Brightness string
	Scan       string
	Track      string
	AcqDate    string
	AcqTime    string
	Satellite  string
	Instrument string
	Confidence string
	Version    string
	BrightT31  string
	FRP        string
	DayNight   string
	Type       string
}

// NRT feeds use bright_ti4/bright_ti5, the yearly archives use
// brightness/bright_t31.
var headerAliases = map[string]string{
	"bright_ti4": "brightness",
	"bright_ti5": "bright_t31",
}

func columnIndex(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.ToLower(strings.TrimSpace(h))
		if alias, ok := headerAliases[h]; ok {
			h = alias
		}
		col[h] = i
	}
	return col
}

func rawFromRecord(col map[string]int, rec []string) RawDetection {
	get := func(name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	return RawDetection{
		Latitude:   get("latitude"),
		Longitude:  get("longitude"),
		Brightness: get("brightness"),
		Scan:       get("scan"),
		Track:      get("track"),
		AcqDate:    get("acq_date"),
		AcqTime:    get("acq_time"),
		Satellite:  get("satellite"),
		Instrument: get("instrument"),
		Confidence: get("confidence"),
		Version:    get("version"),
		BrightT31:  get("bright_t31"),
		FRP:        get("frp"),
		DayNight:   get("daynight"),
		Type:       get("type"),
	}
}

// ParseCSV reads a FIRMS CSV by header name.
func ParseCSV(r io.Reader) ([]RawDetection, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNotCSV
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := columnIndex(header)
	if _, ok := col["latitude"]; !ok {
		return nil, ErrNotCSV
	}

	var out []RawDetection
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rawFromRecord(col, rec))
	}
	return out, nil
}
