package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kabar-api/kabar-api/internal/middleware"
)

func SetupRoutes(h *Handler, tokenHash string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.AdminTokenMiddleware(tokenHash))

	r.Post("/pipelines/{name}/run", h.RunPipeline)
	r.Get("/pipelines/runs", h.ListRuns)

	return r
}
