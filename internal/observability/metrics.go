// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ToggleTotal counts interaction toggles by relation and resulting state.
	ToggleTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clubhub_toggle_total",
		Help: "Total number of follow, rsvp and like toggles by resulting state",
	}, []string{"relation", "state"})

	// ModerationActions counts admin moderation actions.
	ModerationActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clubhub_moderation_actions_total",
		Help: "Total number of admin moderation actions",
	}, []string{"action"})

	// AccessDenied counts gate rejections by gate name.
	AccessDenied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clubhub_access_denied_total",
		Help: "Total number of requests rejected by an access gate",
	}, []string{"gate"})

	// CacheLookups counts cache lookups by cache name and result.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clubhub_cache_lookups_total",
		Help: "Total number of cache lookups by result",
	}, []string{"cache", "result"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clubhub_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records repository latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "clubhub_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordToggle increments the toggle counter.
func RecordToggle(relation string, active bool) {
	state := "inactive"
	if active {
		state = "active"
	}
	ToggleTotal.WithLabelValues(relation, state).Inc()
}
