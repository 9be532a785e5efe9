package articles

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kabar-api/kabar-api/internal/logging"
	"github.com/kabar-api/kabar-api/internal/utils"
)

const notFoundDetail = "No articles found for the given date range"

type Handler struct {
	Reader Reader
}

// Range serves GET /articles/{start_date}/{end_date}.
func (h *Handler) Range(w http.ResponseWriter, r *http.Request) {
	start, err := time.Parse(time.DateOnly, chi.URLParam(r, "start_date"))
	if err != nil {
		utils.WriteDetail(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}
	end, err := time.Parse(time.DateOnly, chi.URLParam(r, "end_date"))
	if err != nil {
		utils.WriteDetail(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
		return
	}
	if !end.After(start) {
		utils.WriteDetail(w, http.StatusBadRequest, "end_date must be after start_date")
		return
	}

	began := time.Now()
	rows, err := h.Reader.Between(r.Context(), start, end)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("articles query failed")
		utils.WriteDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(rows) == 0 {
		utils.WriteDetail(w, http.StatusNotFound, notFoundDetail)
		return
	}
	utils.AddServerTiming(w, utils.Timing{Name: "db", Dur: time.Since(began)})
	utils.WriteJSON(w, http.StatusOK, rows)
}
