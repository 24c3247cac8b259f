// Package metrics declares the Prometheus collectors the registry
// increments inline from its operations; there is no periodic polling loop
// to drive here, so unlike the metrics this package is adapted from there is
// no collector.go.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registry_operations_total",
			Help: "Total number of registry operations by name and outcome",
		},
		[]string{"op", "outcome"},
	)

	KVCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registry_kv_calls_total",
			Help: "Total number of KV gateway calls by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	InstantiateDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "registry_instantiate_duration_seconds",
			Help:    "Time taken to instantiate a cluster in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(OperationsTotal)
	prometheus.MustRegister(KVCallsTotal)
	prometheus.MustRegister(InstantiateDuration)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveOperation records the outcome of a top-level registry operation.
func ObserveOperation(op string, err error) {
	OperationsTotal.WithLabelValues(op, outcome(err)).Inc()
}

// ObserveKVCall records the outcome of an individual KV gateway call.
func ObserveKVCall(op string, err error) {
	KVCallsTotal.WithLabelValues(op, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}
