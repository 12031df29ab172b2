package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(stageFailuresTotal, productOutcomesTotal) }

var stageFailuresTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "store_stage_failures_total",
		Help: "Fail-fast stage failures, labeled by stage name.",
	},
	[]string{"stage"},
)

var productOutcomesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "store_product_outcomes_total",
		Help: "Per-product deployment outcomes, labeled by result.",
	},
	[]string{"result"}, // 'created', 'failed', 'no_image'
)

func IncStageFailure(stage string) {
	stageFailuresTotal.WithLabelValues(norm(stage)).Inc()
}

func IncProductOutcome(result string) {
	productOutcomesTotal.WithLabelValues(norm(result)).Inc()
}
