package executor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// JobsCurrentlyRunning tracks the number of jobs currently being executed
	JobsCurrentlyRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "turbo_export_jobs_currently_running",
		Help: "The number of export jobs currently being executed",
	})

	// JobsTotal counts finished jobs by mode, format and outcome
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turbo_export_jobs_total",
			Help: "Total number of finished export jobs",
		},
		[]string{"mode", "format", "status"},
	)

	// RowsExported counts data rows written by successful jobs
	RowsExported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turbo_export_rows_total",
			Help: "Total number of data rows exported",
		},
		[]string{"format"},
	)

	// JobDuration tracks job wall-clock time in seconds
	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "turbo_export_job_duration_seconds",
			Help:    "Duration of export jobs in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)
)
