package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/fires", h.Fires)
	r.Get("/fires/summary", h.FireSummary)
	r.Get("/air-quality/latest", h.AirQuality)
	r.Get("/articles/latest", h.Articles)
	r.Get("/temperature", h.Temperature)

	return r
}
