// Package admin exposes manual pipeline triggers and the run history.
package admin

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kabar-api/kabar-api/internal/logging"
	"github.com/kabar-api/kabar-api/internal/pipeline"
	"github.com/kabar-api/kabar-api/internal/utils"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 200
)

// Runner triggers a registered pipeline by name.
type Runner interface {
	RunByName(ctx context.Context, name string) (*pipeline.Run, error)
}

type Handler struct {
	Runner Runner
	Runs   pipeline.RunStore
}

type runResponse struct {
	Run   *pipeline.Run `json:"run"`
	Error string        `json:"error,omitempty"`
}

// RunPipeline runs the named job synchronously and returns its record.
func (h *Handler) RunPipeline(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	run, err := h.Runner.RunByName(r.Context(), name)
	if errors.Is(err, pipeline.ErrUnknownJob) {
		utils.WriteDetail(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Str("job", name).Msg("manual run failed")
		utils.WriteJSON(w, http.StatusBadGateway, runResponse{Run: run, Error: err.Error()})
		return
	}
	utils.WriteJSON(w, http.StatusOK, runResponse{Run: run})
}

// ListRuns returns the latest runs, newest first.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			utils.WriteDetail(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxRunLimit)
	}

	runs, err := h.Runs.Latest(r.Context(), limit)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("list runs failed")
		utils.WriteDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []pipeline.Run{}
	}
	utils.WriteJSON(w, http.StatusOK, runs)
}
