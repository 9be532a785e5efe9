package dashboard

import (
	"net/http"
	"time"

	"github.com/kabar-api/kabar-api/internal/logging"
	"github.com/kabar-api/kabar-api/internal/regions"
	"github.com/kabar-api/kabar-api/internal/utils"
)

const (
	topLimit        = 5
	articleLookback = 2
)

type Handler struct {
	Store    Store
	Location *time.Location
	Now      func() time.Time
}

func (h *Handler) today() time.Time {
	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	if h.Location != nil {
		now = now.In(h.Location)
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

func (h *Handler) since(w http.ResponseWriter, r *http.Request) (int, time.Time, bool) {
	days, err := ParseDays(r.URL.Query().Get("days"))
	if err != nil {
		utils.WriteDetail(w, http.StatusBadRequest, err.Error())
		return 0, time.Time{}, false
	}
	return days, h.today().AddDate(0, 0, -days), true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("dashboard query failed")
	utils.WriteDetail(w, http.StatusInternalServerError, err.Error())
}

// Fires serves the density map points.
func (h *Handler) Fires(w http.ResponseWriter, r *http.Request) {
	_, since, ok := h.since(w, r)
	if !ok {
		return
	}
	points, err := h.Store.FirePoints(r.Context(), since)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, nonNil(points))
}

// FireSummary serves the count cards, the daily line and the top-5 bars.
func (h *Handler) FireSummary(w http.ResponseWriter, r *http.Request) {
	days, since, ok := h.since(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	began := time.Now()

	total, high, err := h.Store.FireCounts(ctx, since)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	daily, err := h.Store.FireDaily(ctx, since)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	provinces, err := h.Store.FireTop(ctx, since, "province", topLimit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	districts, err := h.Store.FireTop(ctx, since, "district", topLimit)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	utils.AddServerTiming(w, utils.Timing{Name: "db", Dur: time.Since(began)})
	utils.WriteJSON(w, http.StatusOK, FireSummary{
		Title:          CardTitle(days),
		Days:           days,
		Total:          total,
		HighConfidence: high,
		Daily:          nonNil(daily),
		TopProvinces:   nonNil(provinces),
		TopDistricts:   nonNil(districts),
	})
}

// AirQuality serves today's latest reading per station.
func (h *Handler) AirQuality(w http.ResponseWriter, r *http.Request) {
	stations, err := h.Store.LatestStations(r.Context(), h.today())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	for i := range stations {
		stations[i].Province = regions.NormalizeProvince(stations[i].Province)
		stations[i].Color = CategoryColor(stations[i].Category)
	}
	utils.WriteJSON(w, http.StatusOK, nonNil(stations))
}

// Articles serves the related-articles list.
func (h *Handler) Articles(w http.ResponseWriter, r *http.Request) {
	cards, err := h.Store.LatestArticles(r.Context(), h.today().AddDate(0, 0, -articleLookback))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, nonNil(cards))
}

// Temperature serves the calendar heat-map data.
func (h *Handler) Temperature(w http.ResponseWriter, r *http.Request) {
	temps, err := h.Store.Temperatures(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, nonNil(temps))
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
