package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	// FunctionRuns counts aggregation function invocations by name and
	// outcome ("ok" or "error").
	FunctionRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedbackhub_function_runs_total",
			Help: "Aggregation function invocations by function and outcome.",
		},
		[]string{"function", "outcome"},
	)

	// AIRequests counts outbound LLM calls by provider and outcome.
	AIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedbackhub_ai_requests_total",
			Help: "Outbound AI provider requests by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	// InsightTransitions counts insight lifecycle transitions by target state.
	InsightTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedbackhub_insight_transitions_total",
			Help: "Insight lifecycle transitions by target status.",
		},
		[]string{"to"},
	)

	// RateLimited counts requests rejected with 429 by limiter name.
	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedbackhub_rate_limited_total",
			Help: "Requests rejected by a rate limiter.",
		},
		[]string{"limiter"},
	)
)

func init() {
	prometheus.MustRegister(FunctionRuns, AIRequests, InsightTransitions, RateLimited)
}

// Outcome maps an error to the "ok"/"error" label value.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
