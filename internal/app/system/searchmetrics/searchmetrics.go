// Package searchmetrics holds the Prometheus collectors for document
// projection and query reconciliation.
package searchmetrics

import "github.com/prometheus/client_golang/prometheus"

var (
	DocumentsProjected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "instructorsearch",
			Name:      "documents_projected_total",
			Help:      "Search documents built from store records",
		},
		[]string{"kind"},
	)

	HitsResolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "instructorsearch",
			Name:      "hits_resolved_total",
			Help:      "Index hits resolved to a live record",
		},
		[]string{"kind"},
	)

	DriftDetected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "instructorsearch",
			Name:      "drift_detected_total",
			Help:      "Index hits whose record no longer exists in the store",
		},
		[]string{"kind"},
	)

	DriftDeleteFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "instructorsearch",
			Name:      "drift_delete_failures_total",
			Help:      "Corrective index deletes that failed",
		},
		[]string{"kind"},
	)

	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "instructorsearch",
			Name:      "query_duration_seconds",
			Help:      "Search duration including reconciliation",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"kind", "backend"},
	)
)

func init() {
	prometheus.MustRegister(DocumentsProjected)
	prometheus.MustRegister(HitsResolved)
	prometheus.MustRegister(DriftDetected)
	prometheus.MustRegister(DriftDeleteFailures)
	prometheus.MustRegister(QueryDuration)
}
