package jobs

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/kabar-api/kabar-api/internal/airquality"
	"github.com/kabar-api/kabar-api/internal/articles"
	"github.com/kabar-api/kabar-api/internal/config"
	"github.com/kabar-api/kabar-api/internal/db"
	"github.com/kabar-api/kabar-api/internal/dedup"
	"github.com/kabar-api/kabar-api/internal/fires"
	"github.com/kabar-api/kabar-api/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testDB connects to DATABASE_URL or skips. Rows written by a test are
// removed when it ends.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	_ = godotenv.Load("../../.env.local")

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set; skipping database integration test")
	}
	d, err := db.Connect(config.DatabaseConfig{URL: url, MaxOpenConns: 4, MaxIdleConns: 2})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(d) })
	require.NoError(t, Migrate(d))
	return d
}

func TestFireStoreRoundTrip(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()
	store := fires.NewGormStore(d)

	date := time.Date(2001, 1, 2, 0, 0, 0, 0, time.UTC)
	rows := []*fires.FireDetection{
		{Latitude: -89.5, Longitude: 1.5, AcqDate: date, AcqTime: 101, Satellite: "T", Province: "Uji"},
		{Latitude: -89.5, Longitude: 1.6, AcqDate: date, AcqTime: 102, Satellite: "T", Province: "Uji"},
	}
	t.Cleanup(func() { d.Where("satellite = ? AND acq_date = ?", "T", date).Delete(&fires.FireDetection{}) })

	n, err := store.Append(ctx, rows[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = store.CopyAppend(ctx, rows[1:])
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	existing, err := store.Since(ctx, date.AddDate(0, 0, -1))
	require.NoError(t, err)
	fresh := dedup.Fresh(rows, existing, fires.Key)
	assert.Empty(t, fresh)
}

func TestAirQualityStoreRoundTrip(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()
	store := airquality.NewGormStore(d)

	at := time.Date(2001, 1, 2, 9, 0, 0, 0, time.UTC)
	row := &airquality.Reading{Address: "integration-test", AirQualityIndex: 10, Category: "Baik", ObservedAt: at, FetchedDate: at}
	t.Cleanup(func() { d.Where("address = ?", "integration-test").Delete(&airquality.Reading{}) })

	_, err := store.Append(ctx, []*airquality.Reading{row})
	require.NoError(t, err)

	existing, err := store.Since(ctx, at.Add(-time.Hour))
	require.NoError(t, err)
	keys := make(map[string]bool)
	for _, r := range existing {
		keys[airquality.Key(r)] = true
	}
	assert.True(t, keys[airquality.Key(row)])
}

func TestArticleStoreBetween(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()
	store := articles.NewGormStore(d)

	published := time.Date(2001, 1, 2, 3, 4, 5, 0, time.UTC)
	a := &articles.Article{
		Title: "Uji", URL: "https://integration.test/a", Keywords: []string{"kebakaran hutan"},
		PublishedTime: published, PublishedDate: time.Date(2001, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	t.Cleanup(func() { d.Where("url = ?", a.URL).Delete(&articles.Article{}) })

	_, err := store.Append(ctx, []*articles.Article{a})
	require.NoError(t, err)

	got, err := store.Between(ctx, time.Date(2001, 1, 2, 0, 0, 0, 0, time.UTC), time.Date(2001, 1, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, a.URL, got[0].URL)
}

func TestRunStoreLatest(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()
	runs := pipeline.NewGormRunStore(d)

	runner := pipeline.NewRunner(runs, pipeline.JobFunc{JobName: "integration_test", Fn: func(context.Context) (pipeline.Result, error) {
		return pipeline.Result{Appended: 1}, nil
	}})
	run, err := runner.RunByName(ctx, "integration_test")
	require.NoError(t, err)
	t.Cleanup(func() { d.Delete(&pipeline.Run{}, "id = ?", run.ID) })

	latest, err := runs.Latest(ctx, 50)
	require.NoError(t, err)
	found := false
	for _, r := range latest {
		if r.ID == run.ID {
			found = true
		}
	}
	assert.True(t, found)
}
