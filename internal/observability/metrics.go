package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sangrachna_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// TransitionsTotal counts moderation transitions by record kind, target status and outcome.
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sangrachna_moderation_transitions_total",
		Help: "Moderation status transitions by kind, target and outcome",
	}, []string{"kind", "target", "outcome"})

	// LikeTogglesTotal counts like toggles by resulting direction.
	LikeTogglesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sangrachna_like_toggles_total",
		Help: "Poem like toggles by direction",
	}, []string{"direction"})

	// NotificationsTotal counts loan approval notifications by outcome.
	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sangrachna_notifications_total",
		Help: "Loan approval notifications by outcome",
	}, []string{"outcome"})

	// NotificationLatency records dispatcher round-trip latency.
	NotificationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sangrachna_notification_latency_seconds",
		Help:    "Notification dispatcher latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// WebSocketConnectionsTotal is the gauge of open operator websocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sangrachna_websocket_connections_total",
		Help: "Total number of active operator WebSocket connections",
	})

	// WebSocketBackpressureDrops counts events dropped for slow websocket clients.
	WebSocketBackpressureDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sangrachna_websocket_backpressure_drops_total",
		Help: "Total number of moderation events dropped due to backpressure",
	})
)

// Outcome labels shared by the counters above.
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)
