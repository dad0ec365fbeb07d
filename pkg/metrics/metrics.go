package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
		[]string{"service"},
	)

	WebSocketConnectionsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "websocket_connections_total",
			Help: "Current number of active WebSocket connections",
		},
		[]string{"role"},
	)

	// Ride lifecycle
	RideTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ride_transitions_total",
			Help: "Ride state transitions by resulting status and outcome",
		},
		[]string{"status", "outcome"},
	)

	// Fan-out
	DispatchDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_deliveries_total",
			Help: "Event deliveries to live connections",
		},
		[]string{"event", "result"},
	)

	LocationRelaysTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "location_relays_total",
			Help: "Location samples received from drivers by outcome",
		},
		[]string{"outcome"},
	)

	EventSinkPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_sink_published_total",
			Help: "Ride events mirrored to external brokers",
		},
		[]string{"sink", "status"},
	)
)

// RecordHTTPMetrics records HTTP request metrics
func RecordHTTPMetrics(service, method, path string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	HttpRequestsTotal.WithLabelValues(service, method, path, status).Inc()
	HttpRequestDuration.WithLabelValues(service, method, path, status).Observe(duration.Seconds())
}

// RecordTransition counts one attempted transition into status.
func RecordTransition(status string, err error) {
	RideTransitionsTotal.WithLabelValues(status, outcome(err)).Inc()
}

// RecordDispatch counts deliveries and drops of a single publish.
func RecordDispatch(event string, delivered, dropped int) {
	if delivered > 0 {
		DispatchDeliveriesTotal.WithLabelValues(event, "delivered").Add(float64(delivered))
	}
	if dropped > 0 {
		DispatchDeliveriesTotal.WithLabelValues(event, "dropped").Add(float64(dropped))
	}
}

// RecordRelay counts one relay attempt. kind is empty on success.
func RecordRelay(kind string) {
	if kind == "" {
		kind = "relayed"
	}
	LocationRelaysTotal.WithLabelValues(kind).Inc()
}

// RecordSinkPublish records a mirror publish to a broker.
func RecordSinkPublish(sink string, err error) {
	EventSinkPublishedTotal.WithLabelValues(sink, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
