package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skillswap_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// FeedSnapshotsTotal counts snapshot deliveries per collection.
	FeedSnapshotsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_feed_snapshots_total",
		Help: "Total number of snapshot deliveries by collection",
	}, []string{"collection"})

	// FeedQueryFailures counts feed queries that degraded to no output.
	FeedQueryFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_feed_query_failures_total",
		Help: "Total number of failed feed queries by collection",
	}, []string{"collection"})

	// WebSocketConnectionsTotal is the gauge of total WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "skillswap_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketEventsTotal counts WebSocket events by type.
	WebSocketEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_websocket_events_total",
		Help: "Total WebSocket events by type",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// ConnectionMutationsTotal counts connection-edge writes by action and outcome.
	ConnectionMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_connection_mutations_total",
		Help: "Total connection-edge mutations by action and outcome",
	}, []string{"action", "outcome"})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}

// RecordFeedSnapshot increments snapshot delivery counters for the collection.
func RecordFeedSnapshot(collection string) {
	FeedSnapshotsTotal.WithLabelValues(collection).Inc()
}

// RecordFeedQueryFailure increments failure counters for the collection.
func RecordFeedQueryFailure(collection string) {
	FeedQueryFailures.WithLabelValues(collection).Inc()
}

// RecordWebSocketEvent increments the WebSocket events counter for the event type.
func RecordWebSocketEvent(eventType string) {
	WebSocketEventsTotal.WithLabelValues(eventType).Inc()
}

// RecordConnectionMutation increments the connection mutation counter.
func RecordConnectionMutation(action, outcome string) {
	ConnectionMutationsTotal.WithLabelValues(action, outcome).Inc()
}
