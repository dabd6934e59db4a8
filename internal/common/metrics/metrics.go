// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	AvailabilityResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "availability_resolutions_total",
			Help: "Total number of availability resolutions by outcome",
		},
		[]string{"outcome"},
	)

	AvailabilityVehiclesReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "availability_vehicles_returned",
			Help:    "Number of free vehicles returned per resolution",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)
)
