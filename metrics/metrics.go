/*
Package metrics defines the Prometheus collectors every scorer run and
API request feed: scoring duration and row counts per metric, job-lock
contention, and HTTP request latency.
*/
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry bundles the collectors so callers take a single dependency
// instead of wiring each metric by hand.
type Registry struct {
	ScoreRunDuration *prometheus.HistogramVec
	RowsWritten      *prometheus.CounterVec
	LockContention   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewRegistry registers every collector against reg (typically
// prometheus.DefaultRegisterer, as bootstrap.New passes).
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)
	return &Registry{
		ScoreRunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pli",
			Subsystem: "scorer",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of one metric scorer run for one month.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"metric"}),
		RowsWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pli",
			Subsystem: "scorer",
			Name:      "rows_written_total",
			Help:      "Output rows persisted by a scorer run.",
		}, []string{"metric"}),
		LockContention: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pli",
			Subsystem: "orchestrator",
			Name:      "lock_contention_total",
			Help:      "Attempts to acquire a job_locks entry that was already held.",
		}, []string{"job"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pli",
			Subsystem: "api",
			Name:      "http_request_duration_seconds",
			Help:      "Latency of leaderboard/admin API requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
}
