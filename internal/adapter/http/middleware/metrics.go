package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hamza-safwan/mini-ride-booking/pkg/metrics"
)

// Metrics records request count, latency and in-flight requests.
// Scrapes of /metrics are not counted.
func (m *Middleware) Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		inFlight := metrics.HttpRequestsInFlight.WithLabelValues(m.service)
		inFlight.Inc()
		defer inFlight.Dec()

		start := time.Now()
		rw := newStatusRecorder(w)
		next.ServeHTTP(rw, r)

		metrics.RecordHTTPMetrics(m.service, r.Method, pathLabel(r.URL.Path), rw.Status(), time.Since(start))
	})
}

// pathLabel collapses ids in path so /rides/{id}/accept is one series.
func pathLabel(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if _, err := uuid.Parse(s); err == nil {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}
