package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/kabar-api/kabar-api/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeRuns struct {
	limit int
}

func (f *fakeRuns) Record(context.Context, *pipeline.Run) error { return nil }

func (f *fakeRuns) Latest(_ context.Context, limit int) ([]pipeline.Run, error) {
	f.limit = limit
	return []pipeline.Run{{Job: "fires", Status: pipeline.StatusSucceeded}}, nil
}

func newServer(t *testing.T, runs *fakeRuns) (http.Handler, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("tok"), bcrypt.MinCost)
	require.NoError(t, err)

	runner := pipeline.NewRunner(runs,
		pipeline.JobFunc{JobName: "fires", Fn: func(context.Context) (pipeline.Result, error) {
			return pipeline.Result{Fetched: 3, Cleaned: 3, Appended: 3}, nil
		}},
		pipeline.JobFunc{JobName: "articles", Fn: func(context.Context) (pipeline.Result, error) {
			return pipeline.Result{}, errors.New("feed unavailable")
		}},
	)
	return SetupRoutes(&Handler{Runner: runner, Runs: runs}, string(hash)), "Bearer tok"
}

func do(h http.Handler, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRunPipeline(t *testing.T) {
	h, auth := newServer(t, &fakeRuns{})

	rec := do(h, http.MethodPost, "/pipelines/fires/run", auth)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Run pipeline.Run `json:"run"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "fires", body.Run.Job)
	assert.Equal(t, 3, body.Run.Appended)
	assert.Equal(t, pipeline.StatusSucceeded, body.Run.Status)
}

func TestRunPipelineFailure(t *testing.T) {
	h, auth := newServer(t, &fakeRuns{})

	rec := do(h, http.MethodPost, "/pipelines/articles/run", auth)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "feed unavailable")
}

func TestRunPipelineUnknown(t *testing.T) {
	h, auth := newServer(t, &fakeRuns{})

	rec := do(h, http.MethodPost, "/pipelines/weather/run", auth)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunPipelineRequiresToken(t *testing.T) {
	h, _ := newServer(t, &fakeRuns{})

	rec := do(h, http.MethodPost, "/pipelines/fires/run", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListRuns(t *testing.T) {
	tests := []struct {
		query string
		code  int
		limit int
	}{
		{"", http.StatusOK, defaultRunLimit},
		{"?limit=5", http.StatusOK, 5},
		{"?limit=5000", http.StatusOK, maxRunLimit},
		{"?limit=0", http.StatusBadRequest, 0},
		{"?limit=x", http.StatusBadRequest, 0},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("limit%s", tc.query), func(t *testing.T) {
			runs := &fakeRuns{}
			h, auth := newServer(t, runs)
			rec := do(h, http.MethodGet, "/pipelines/runs"+tc.query, auth)
			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, tc.limit, runs.limit)
		})
	}
}
