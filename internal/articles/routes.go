package articles

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes(reader Reader) http.Handler {
	r := chi.NewRouter()
	h := &Handler{Reader: reader}

	r.Get("/{start_date}/{end_date}", h.Range)

	return r
}
