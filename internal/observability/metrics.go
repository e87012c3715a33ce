// Package observability provides Prometheus metrics for monitoring feature
// generation runs.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the feature pipeline.
type Metrics struct {
	// Stream metrics
	EventsProcessed    prometheus.Counter
	ClickoutsProcessed prometheus.Counter
	RecordsEmitted     prometheus.Counter

	// Accumulator metrics
	AccumulatorUpdates prometheus.Counter
	CacheRecomputes    prometheus.Counter

	// Store metrics
	RecordsStored prometheus.Counter
	StoreErrors   *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics with the given registerer.
// Pass prometheus.DefaultRegisterer for production use.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		EventsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "featgen_events_processed_total",
			Help: "Total number of events consumed from the stream",
		}),
		ClickoutsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "featgen_clickouts_processed_total",
			Help: "Total number of clickout events that produced candidates",
		}),
		RecordsEmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "featgen_records_emitted_total",
			Help: "Total number of per-candidate feature records emitted",
		}),
		AccumulatorUpdates: factory.NewCounter(prometheus.CounterOpts{
			Name: "featgen_accumulator_updates_total",
			Help: "Total number of accumulator state updates",
		}),
		CacheRecomputes: factory.NewCounter(prometheus.CounterOpts{
			Name: "featgen_cointeraction_cache_recomputes_total",
			Help: "Recomputations of the co-interaction per-item count table",
		}),
		RecordsStored: factory.NewCounter(prometheus.CounterOpts{
			Name: "featgen_records_stored_total",
			Help: "Total number of feature records written to the store",
		}),
		StoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "featgen_store_errors_total",
			Help: "Feature store write errors by kind",
		}, []string{"kind"}),
	}
}

// Handler returns an HTTP handler exposing the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
