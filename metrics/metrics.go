// Package metrics exposes prometheus counters for the state store and its collaborators.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "socialdash"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeNoop    = "noop"
)

var (
	StoreActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_actions_total",
			Help:      "State store actions by name and outcome",
		},
		[]string{"action", "outcome"},
	)

	PersistenceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_failures_total",
			Help:      "Failed writes to the durable store by key",
		},
		[]string{"key"},
	)

	RecordsEvicted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_evicted_total",
			Help:      "Persisted records discarded on load because they could not be trusted",
		},
		[]string{"key", "reason"},
	)

	ABTestsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ab_tests_resolved_total",
			Help:      "A/B tests resolved by platform and winner",
		},
		[]string{"platform", "winner"},
	)

	GeneratorCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generator_calls_total",
			Help:      "AI generator calls by generator and outcome",
		},
		[]string{"generator", "outcome"},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
