// Package regions resolves coordinates to Indonesian administrative
// regions using a static boundary file.
package regions

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

var ErrNoFeatures = errors.New("boundary file has no polygon features")

// Region is the administrative area a point falls in.
type Region struct {
	Province string
	District string
}

type area struct {
	region Region
	bound  orb.Bound
	geom   orb.Geometry
}

// Index answers point-in-polygon lookups. It is read-only after Load and
// safe for concurrent use.
type Index struct {
	areas []area
}

// Load reads a GeoJSON FeatureCollection from path. Only Polygon and
// MultiPolygon features are kept.
func Load(path, provinceKey, districtKey string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read boundaries: %w", err)
	}
	return Parse(data, provinceKey, districtKey)
}

// Parse builds an Index from raw GeoJSON.
func Parse(data []byte, provinceKey, districtKey string) (*Index, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse boundaries: %w", err)
	}

	idx := &Index{areas: make([]area, 0, len(fc.Features))}
	for _, f := range fc.Features {
		switch f.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			continue
		}
		idx.areas = append(idx.areas, area{
			region: Region{
				Province: NormalizeProvince(f.Properties.MustString(provinceKey, "")),
				District: f.Properties.MustString(districtKey, ""),
			},
			bound: f.Geometry.Bound(),
			geom:  f.Geometry,
		})
	}
	if len(idx.areas) == 0 {
		return nil, ErrNoFeatures
	}
	return idx, nil
}

// Len is the number of polygon features in the index.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.areas)
}

// Lookup returns the first region, in file order, whose polygon contains
// the point.
func (idx *Index) Lookup(lat, lon float64) (Region, bool) {
	if idx == nil || !validCoord(lat, lon) {
		return Region{}, false
	}
	p := orb.Point{lon, lat}
	for _, a := range idx.areas {
		if !a.bound.Contains(p) {
			continue
		}
		if contains(a.geom, p) {
			return a.region, true
		}
	}
	return Region{}, false
}

func contains(g orb.Geometry, p orb.Point) bool {
	switch g := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, p)
	}
	return false
}

func validCoord(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Locatable is implemented by rows that carry a point and region names.
type Locatable interface {
	Coordinates() (lat, lon float64)
	SetRegion(Region)
}

// Annotate fills the region of every row. Rows outside every polygon keep
// empty names. It returns how many rows matched. A nil index leaves rows
// untouched.
func Annotate[T Locatable](idx *Index, rows []T) int {
	if idx == nil {
		return 0
	}
	matched := 0
	for _, r := range rows {
		if reg, ok := idx.Lookup(r.Coordinates()); ok {
			r.SetRegion(reg)
			matched++
		}
	}
	return matched
}
