package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(aiCallsLatencyMs, aiPromptTokens) }

var aiCallsLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "ai_calls_latency_ms",
		Help:    "AI call latency distribution in milliseconds.",
		Buckets: []float64{25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000, 30000},
	},
	[]string{"provider", "operation", "success"},
)

var aiPromptTokens = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ai_prompt_tokens_total",
		Help: "Estimated prompt tokens sent, per provider and operation.",
	},
	[]string{"provider", "operation"},
)

func ObserveAICall(provider, operation string, latencyMs int, success bool) {
	s := "false"
	if success {
		s = "true"
	}
	aiCallsLatencyMs.WithLabelValues(norm(provider), norm(operation), s).Observe(float64(latencyMs))
}

func AddPromptTokens(provider, operation string, tokens int) {
	if tokens <= 0 {
		return
	}
	aiPromptTokens.WithLabelValues(norm(provider), norm(operation)).Add(float64(tokens))
}
