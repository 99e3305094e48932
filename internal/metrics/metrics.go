package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// WebSocket metrics
	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_ws_connections_active",
			Help: "Currently open chat connections",
		},
	)

	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Total chat messages persisted",
		},
		[]string{"kind"},
	)

	TypingEventsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_typing_events_total",
			Help: "Total typing indicator events broadcast",
		},
	)

	ReadReceiptsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_read_receipts_total",
			Help: "Total read-receipt batches processed",
		},
	)

	NotificationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_notifications_total",
			Help: "Total notifications created",
		},
	)

	DroppedFramesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_dropped_frames_total",
			Help: "Inbound frames dropped without processing",
		},
		[]string{"reason"}, // "malformed", "unknown_type", "validation"
	)
)
