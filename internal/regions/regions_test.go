package regions

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two boxes on Sumatra and Kalimantan, plus a multipolygon district and a
// point feature that must be ignored.
const boundariesJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"province": "Riau", "district": "Pelalawan"},
      "geometry": {"type": "Polygon", "coordinates": [[[101,0],[103,0],[103,1],[101,1],[101,0]]]}
    },
    {
      "type": "Feature",
      "properties": {"province": "Kalimantan Tengah", "district": "Pulang Pisau"},
      "geometry": {"type": "MultiPolygon", "coordinates": [
        [[[113,-3],[114,-3],[114,-2],[113,-2],[113,-3]]],
        [[[115,-3],[116,-3],[116,-2],[115,-2],[115,-3]]]
      ]}
    },
    {
      "type": "Feature",
      "properties": {"province": "Dki Jakarta", "district": "Jakarta Pusat"},
      "geometry": {"type": "Polygon", "coordinates": [[[106.7,-6.3],[106.9,-6.3],[106.9,-6.1],[106.7,-6.1],[106.7,-6.3]]]}
    },
    {
      "type": "Feature",
      "properties": {"province": "Nowhere"},
      "geometry": {"type": "Point", "coordinates": [102, 0.5]}
    }
  ]
}`

func testIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Parse([]byte(boundariesJSON), "province", "district")
	require.NoError(t, err)
	return idx
}

func TestParseSkipsNonPolygons(t *testing.T) {
	idx := testIndex(t)
	assert.Equal(t, 3, idx.Len())
}

func TestLookup(t *testing.T) {
	idx := testIndex(t)

	tests := []struct {
		name     string
		lat, lon float64
		want     Region
		ok       bool
	}{
		{"inside polygon", 0.5, 102, Region{"Riau", "Pelalawan"}, true},
		{"first multipolygon part", -2.5, 113.5, Region{"Kalimantan Tengah", "Pulang Pisau"}, true},
		{"second multipolygon part", -2.5, 115.5, Region{"Kalimantan Tengah", "Pulang Pisau"}, true},
		{"between multipolygon parts", -2.5, 114.5, Region{}, false},
		{"province alias applied", -6.2, 106.8, Region{"DKI Jakarta", "Jakarta Pusat"}, true},
		{"outside everything", 5, 95, Region{}, false},
		{"nan", math.NaN(), 102, Region{}, false},
		{"out of range", 120, 102, Region{}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := idx.Lookup(tc.lat, tc.lon)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLookupNilIndex(t *testing.T) {
	var idx *Index
	_, ok := idx.Lookup(0.5, 102)
	assert.False(t, ok)
}

func TestParseRejectsEmpty(t *testing.T) {
	_, err := Parse([]byte(`{"type":"FeatureCollection","features":[]}`), "province", "district")
	assert.ErrorIs(t, err, ErrNoFeatures)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boundaries.geojson")
	require.NoError(t, os.WriteFile(path, []byte(boundariesJSON), 0o600))

	idx, err := Load(path, "province", "district")
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.geojson"), "province", "district")
	assert.Error(t, err)
}

type point struct {
	lat, lon float64
	region   Region
}

func (p *point) Coordinates() (float64, float64) { return p.lat, p.lon }
func (p *point) SetRegion(r Region)              { p.region = r }

func TestAnnotate(t *testing.T) {
	idx := testIndex(t)
	rows := []*point{{lat: 0.5, lon: 102}, {lat: 5, lon: 95}}

	assert.Equal(t, 1, Annotate(idx, rows))
	assert.Equal(t, "Riau", rows[0].region.Province)
	assert.Empty(t, rows[1].region.Province)

	assert.Equal(t, 0, Annotate[*point](nil, rows))
}

func TestNormalizeProvince(t *testing.T) {
	assert.Equal(t, "DKI Jakarta", NormalizeProvince("Dki Jakarta"))
	assert.Equal(t, "NTT", NormalizeProvince("Ntt"))
	assert.Equal(t, "NTB", NormalizeProvince(" Ntb "))
	assert.Equal(t, "Aceh", NormalizeProvince("Nad"))
	assert.Equal(t, "Riau", NormalizeProvince("Riau"))
}
