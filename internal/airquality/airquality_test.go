package airquality

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kabar-api/kabar-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const aqmsJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type":"Feature","geometry":{"type":"Point","coordinates":[106.8272,-6.1751]},
     "properties":{"alamat":"Jl. Medan Merdeka","kota":"JAKARTA PUSAT","provinsi":"DKI JAKARTA","nilai":"152","cat":"TIDAK SEHAT","waktu":"2024-08-03 09:00:00"}},
    {"type":"Feature","geometry":{"type":"Point","coordinates":[101.4478,0.5071]},
     "properties":{"alamat":"Kantor Gubernur","kota":"pekanbaru","provinsi":"riau","nilai":48,"cat":"baik","waktu":"2024-08-03 08:00:00"}},
    {"type":"Feature","geometry":{"type":"Point","coordinates":[123.6,-10.2]},
     "properties":{"alamat":"Kupang","kota":"KUPANG","provinsi":"NTT","nilai":null,"cat":null,"waktu":"2024-08-03 08:00:00"}},
    {"type":"Feature","geometry":{"type":"Point","coordinates":[116.1,-8.6]},
     "properties":{"alamat":"Mataram","kota":"MATARAM","provinsi":"NTB","nilai":77,"cat":"SEDANG","waktu":"kemarin"}}
  ]
}`

func TestDecodeFeatures(t *testing.T) {
	features, err := DecodeFeatures([]byte(aqmsJSON))
	require.NoError(t, err)
	require.Len(t, features, 4)
	assert.True(t, features[0].Properties.Nilai.Valid)
	assert.Equal(t, 152.0, features[0].Properties.Nilai.Value)
	assert.Equal(t, 48.0, features[1].Properties.Nilai.Value)
	assert.False(t, features[2].Properties.Nilai.Valid)

	_, err = DecodeFeatures([]byte(`{"message":"maintenance"}`))
	assert.ErrorIs(t, err, ErrBadPayload)
}

func TestClean(t *testing.T) {
	features, err := DecodeFeatures([]byte(aqmsJSON))
	require.NoError(t, err)
	loc := Location("Asia/Jakarta")
	fetched := time.Date(2024, 8, 3, 10, 0, 0, 0, loc)

	rows, dropped := Clean(features, fetched, loc)
	assert.Equal(t, 2, dropped)
	require.Len(t, rows, 2)

	r := rows[0]
	assert.Equal(t, "-6.1751", r.LatSensor)
	assert.Equal(t, "106.8272", r.LonSensor)
	assert.Equal(t, "Jakarta Pusat", r.City)
	assert.Equal(t, "DKI Jakarta", r.Province)
	assert.Equal(t, "Tidak Sehat", r.Category)
	assert.Equal(t, int16(152), r.AirQualityIndex)
	assert.True(t, r.ObservedAt.Equal(time.Date(2024, 8, 3, 9, 0, 0, 0, loc)))
	assert.Equal(t, time.Date(2024, 8, 3, 0, 0, 0, 0, time.UTC), r.FetchedDate)

	assert.Equal(t, "Pekanbaru", rows[1].City)
	assert.Equal(t, "Riau", rows[1].Province)
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Sangat Tidak Sehat", TitleCase("SANGAT TIDAK SEHAT"))
	assert.Equal(t, "Kalimantan Tengah", TitleCase(" kalimantan tengah "))
}

type fakeFetcher struct{ features []Feature }

func (f fakeFetcher) Fetch(context.Context) ([]Feature, error) { return f.features, nil }

type fakeStore struct {
	existing []*Reading
	since    time.Time
	appended []*Reading
}

func (s *fakeStore) Since(_ context.Context, since time.Time) ([]*Reading, error) {
	s.since = since
	return s.existing, nil
}

func (s *fakeStore) Append(_ context.Context, rows []*Reading) (int, error) {
	s.appended = append(s.appended, rows...)
	return len(rows), nil
}

func TestPipelineRun(t *testing.T) {
	features, err := DecodeFeatures([]byte(aqmsJSON))
	require.NoError(t, err)
	loc := Location("Asia/Jakarta")

	store := &fakeStore{existing: []*Reading{{
		Address:    "Jl. Medan Merdeka",
		ObservedAt: time.Date(2024, 8, 3, 9, 0, 0, 0, loc),
	}}}
	p := &Pipeline{
		Fetcher:  fakeFetcher{features},
		Store:    store,
		Location: loc,
		Now:      func() time.Time { return time.Date(2024, 8, 3, 3, 0, 0, 0, time.UTC) },
	}

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, res.Fetched)
	assert.Equal(t, 2, res.Cleaned)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, res.Appended)
	require.Len(t, store.appended, 1)
	assert.Equal(t, "Kantor Gubernur", store.appended[0].Address)
	assert.True(t, store.since.Equal(time.Date(2024, 8, 3, 0, 0, 0, 0, loc)))
}

// windowStore honours the since bound the way the SQL store does.
type windowStore struct {
	rows []*Reading
}

func (s *windowStore) Since(_ context.Context, since time.Time) ([]*Reading, error) {
	var out []*Reading
	for _, r := range s.rows {
		if !r.ObservedAt.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *windowStore) Append(_ context.Context, rows []*Reading) (int, error) {
	s.rows = append(s.rows, rows...)
	return len(rows), nil
}

func TestPipelineRunStaleStationStoredOnce(t *testing.T) {
	stale := `{"type":"FeatureCollection","features":[
	 {"type":"Feature","geometry":{"type":"Point","coordinates":[104.75,-2.99]},
	  "properties":{"alamat":"Palembang","kota":"PALEMBANG","provinsi":"SUMATERA SELATAN","nilai":96,"cat":"SEDANG","waktu":"2024-08-02 21:00:00"}}]}`
	features, err := DecodeFeatures([]byte(stale))
	require.NoError(t, err)
	loc := Location("Asia/Jakarta")

	store := &windowStore{}
	p := &Pipeline{
		Fetcher:  fakeFetcher{features},
		Store:    store,
		Location: loc,
		Now:      func() time.Time { return time.Date(2024, 8, 3, 3, 0, 0, 0, time.UTC) },
	}
	for i := 0; i < 3; i++ {
		_, err := p.Run(context.Background())
		require.NoError(t, err)
	}
	assert.Len(t, store.rows, 1)
}

func TestWindow(t *testing.T) {
	loc := Location("Asia/Jakarta")
	now := time.Date(2024, 8, 3, 10, 0, 0, 0, loc)
	midnight := time.Date(2024, 8, 3, 0, 0, 0, 0, loc)
	assert.True(t, window(nil, now).Equal(midnight))

	old := time.Date(2024, 8, 1, 18, 0, 0, 0, loc)
	rows := []*Reading{{ObservedAt: now}, {ObservedAt: old}}
	assert.True(t, window(rows, now).Equal(old))
}

func TestCleanDropsInvalidReadings(t *testing.T) {
	bad := `{"type":"FeatureCollection","features":[
	 {"type":"Feature","geometry":{"type":"Point","coordinates":[200,-6.1]},
	  "properties":{"alamat":"A","kota":"X","provinsi":"Y","nilai":50,"cat":"BAIK","waktu":"2024-08-03 09:00:00"}},
	 {"type":"Feature","geometry":{"type":"Point","coordinates":[106.8,-6.1]},
	  "properties":{"alamat":"B","kota":"X","provinsi":"Y","nilai":-4,"cat":"BAIK","waktu":"2024-08-03 09:00:00"}},
	 {"type":"Feature","geometry":{"type":"Point","coordinates":[106.8,-6.1]},
	  "properties":{"alamat":"C","kota":"X","provinsi":"Y","nilai":50,"cat":"BAIK","waktu":"2024-08-03 09:00:00"}}]}`
	features, err := DecodeFeatures([]byte(bad))
	require.NoError(t, err)
	loc := Location("Asia/Jakarta")

	rows, dropped := Clean(features, time.Date(2024, 8, 3, 10, 0, 0, 0, loc), loc)
	assert.Equal(t, 2, dropped)
	require.Len(t, rows, 1)
	assert.Equal(t, "C", rows[0].Address)
}

func TestClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(aqmsJSON))
	}))
	defer srv.Close()

	c := NewClient(config.AirQualityConfig{Endpoint: srv.URL, Timeout: time.Second})
	features, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, features, 4)
}
