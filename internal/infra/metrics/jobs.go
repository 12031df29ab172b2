package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(storeJobsProcessedTotal, storeJobDurationSeconds) }

var storeJobsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "store_jobs_processed_total",
		Help: "Total number of store creation jobs processed, labeled by terminal status.",
	},
	[]string{"status"}, // 'live', 'failed'
)

var storeJobDurationSeconds = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "store_job_duration_seconds",
		Help:    "Wall-clock duration of store creation runs.",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	},
)

func IncStoreJob(status string) {
	storeJobsProcessedTotal.WithLabelValues(norm(status)).Inc()
}

func ObserveStoreJobDuration(seconds float64) {
	storeJobDurationSeconds.Observe(seconds)
}
