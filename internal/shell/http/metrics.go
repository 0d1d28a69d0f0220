package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "turbo_export_http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
			// Exports run synchronously inside the request, so the tail is long.
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turbo_export_http_requests_total",
			Help: "Total number of HTTP requests by route and status code",
		},
		[]string{"method", "route", "status"},
	)
)
