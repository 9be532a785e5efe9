package utils

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Detail is the error body returned by every API route.
type Detail struct {
	Detail string `json:"detail"`
}

// WriteJSON encodes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteDetail writes {"detail": msg}.
func WriteDetail(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, Detail{Detail: msg})
}

// AddServerTiming appends Server-Timing entries, e.g. {"db", 12ms}.
func AddServerTiming(w http.ResponseWriter, entries ...Timing) {
	if len(entries) == 0 {
		return
	}
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, fmt.Sprintf("%s;dur=%.1f", e.Name, float64(e.Dur.Microseconds())/1000))
	}
	w.Header().Add("Server-Timing", strings.Join(parts, ", "))
}

type Timing struct {
	Name string
	Dur  time.Duration
}
