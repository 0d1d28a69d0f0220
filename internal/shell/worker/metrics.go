package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// JobsQueued tracks jobs submitted to a pool and not yet picked up by a worker
	JobsQueued = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "turbo_export_pool_jobs_queued",
		Help: "The number of export jobs waiting in worker pool queues",
	})
)
