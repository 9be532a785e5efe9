// Package metrics holds the Prometheus collectors shared by the ETL
// pipelines, the upstream fetchers, and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kabar_pipeline_runs_total",
			Help: "Pipeline runs by job and outcome",
		},
		[]string{"job", "status"},
	)

	PipelineRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kabar_pipeline_rows_total",
			Help: "Rows handled by pipelines, by job and stage (fetched, cleaned, skipped, appended)",
		},
		[]string{"job", "stage"},
	)

	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kabar_pipeline_duration_seconds",
			Help:    "Wall time of a pipeline run",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"job"},
	)

	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kabar_upstream_requests_total",
			Help: "Outbound requests to data sources by source and result",
		},
		[]string{"source", "result"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kabar_upstream_request_duration_seconds",
			Help:    "Latency of outbound requests to data sources",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kabar_upstream_breaker_state",
			Help: "Circuit breaker state per source (0 closed, 1 half-open, 2 open)",
		},
		[]string{"source"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kabar_http_requests_total",
			Help: "API requests by route pattern and status code",
		},
		[]string{"route", "code"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kabar_http_request_duration_seconds",
			Help:    "API request latency by route pattern",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

// ObserveHTTP records one served API request.
func ObserveHTTP(route string, code int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
