package metrics

import "github.com/prometheus/client_golang/prometheus"

// Model provider Prometheus metrics. The "kind" label is "chat" or "embedding".
var (
	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fewshot",
			Name:      "llm_requests_total",
			Help:      "Total number of model provider requests",
		},
		[]string{"provider", "model", "kind", "status"},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fewshot",
			Name:      "llm_request_duration_seconds",
			Help:      "Model provider request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider", "model", "kind"},
	)

	LLMTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fewshot",
			Name:      "llm_tokens_total",
			Help:      "Total model tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	LLMErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fewshot",
			Name:      "llm_errors_total",
			Help:      "Total model provider errors",
		},
		[]string{"provider", "model", "error_type"},
	)

	LLMBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "fewshot",
			Name:      "llm_budget_tokens_remaining",
			Help:      "Remaining token budget",
		},
		[]string{"provider", "period"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fewshot",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	GenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fewshot",
			Name:      "generations_total",
			Help:      "Completed generations by application and outcome",
		},
		[]string{"app", "status"},
	)

	PromptExamplesUsed = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fewshot",
			Name:      "prompt_examples_used",
			Help:      "Number of few-shot examples spliced into each post prompt",
			Buckets:   []float64{0, 1, 2, 3, 5, 8},
		},
	)
)

var llmMetricsRegistered bool

// RegisterLLMMetrics registers model provider metrics. Must be called once from main.
func RegisterLLMMetrics() {
	if llmMetricsRegistered {
		return
	}
	prometheus.MustRegister(LLMRequestsTotal)
	prometheus.MustRegister(LLMRequestDuration)
	prometheus.MustRegister(LLMTokensTotal)
	prometheus.MustRegister(LLMErrorsTotal)
	prometheus.MustRegister(LLMBudgetTokensRemaining)
	prometheus.MustRegister(EmbeddingCacheTotal)
	prometheus.MustRegister(GenerationsTotal)
	prometheus.MustRegister(PromptExamplesUsed)
	llmMetricsRegistered = true
}
