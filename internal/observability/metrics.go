package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by the scrape and generation collectors.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeFailed   = "failed"
	OutcomeOK       = "ok"
	OutcomeError    = "error"
)

var (
	// HTTPRequestsTotal counts served requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roaster_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method, route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "roaster_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"method", "path", "status"},
	)

	// ScrapesTotal counts profile extractions by outcome.
	ScrapesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roaster_scrapes_total",
			Help: "Total number of profile extractions.",
		},
		[]string{"outcome"},
	)

	// ScrapeDuration observes how long a browser session takes end to end.
	ScrapeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "roaster_scrape_duration_seconds",
			Help:    "Duration of profile extractions.",
			Buckets: []float64{1, 5, 10, 15, 30, 60, 120},
		},
	)

	// GenerationsTotal counts calls to the generation service by outcome.
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roaster_generations_total",
			Help: "Total number of roast generation calls.",
		},
		[]string{"outcome"},
	)
)
