package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Assistant Prometheus metrics.
var (
	AssistantRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cartwright",
			Name:      "assistant_requests_total",
			Help:      "Total number of assistant completion requests",
		},
		[]string{"model", "status"},
	)

	AssistantRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cartwright",
			Name:      "assistant_request_duration_seconds",
			Help:      "Assistant completion request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"model"},
	)

	AssistantTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cartwright",
			Name:      "assistant_tokens_total",
			Help:      "Total assistant tokens consumed",
		},
		[]string{"model", "type"},
	)

	AssistantErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cartwright",
			Name:      "assistant_errors_total",
			Help:      "Total assistant errors",
		},
		[]string{"model", "error_type"},
	)

	AssistantBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "cartwright",
			Name:      "assistant_budget_tokens_remaining",
			Help:      "Remaining assistant token budget",
		},
		[]string{"period"},
	)

	CompletionCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cartwright",
			Name:      "completion_cache_total",
			Help:      "Completion cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	SelectionFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cartwright",
			Name:      "selection_fallbacks_total",
			Help:      "Recommendation requests answered by the deterministic fallback",
		},
		[]string{"reason"}, // "disabled" / "call_failed" / "parse_failed" / "no_valid_ids"
	)
)

var registerAssistantOnce sync.Once

// RegisterAssistantMetrics registers Prometheus assistant metrics.
// Safe to call from concurrent constructors; only the first call registers.
func RegisterAssistantMetrics() {
	registerAssistantOnce.Do(func() {
		prometheus.MustRegister(AssistantRequestsTotal)
		prometheus.MustRegister(AssistantRequestDuration)
		prometheus.MustRegister(AssistantTokensTotal)
		prometheus.MustRegister(AssistantErrorsTotal)
		prometheus.MustRegister(AssistantBudgetTokensRemaining)
		prometheus.MustRegister(CompletionCacheTotal)
		prometheus.MustRegister(SelectionFallbacksTotal)
	})
}
