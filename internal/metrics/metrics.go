package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "backoffice"

var (
	BackendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Calls made to the membership, product and order services.",
	}, []string{"service", "method", "outcome"})

	BackendLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Latency of backend calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"service", "method"})

	StaleResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stale_responses_total",
		Help:      "Loaded lists discarded because a newer load for the same slice was started.",
	}, []string{"slice"})

	EventsConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_consumed_total",
		Help:      "Backend entity events consumed, by resulting action.",
	}, []string{"entity", "result"})

	SnapshotCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshot_cache_total",
		Help:      "Snapshot cache lookups by result.",
	}, []string{"slice", "result"})
)

// Outcome labels a backend call by its status code, or "unreachable".
func Outcome(status int) string {
	if status == 0 {
		return "unreachable"
	}
	return strconv.Itoa(status/100) + "xx"
}

// ObserveBackend records a single backend call.
func ObserveBackend(service, method string, status int, started time.Time) {
	BackendRequests.WithLabelValues(service, method, Outcome(status)).Inc()
	BackendLatency.WithLabelValues(service, method).Observe(time.Since(started).Seconds())
}
