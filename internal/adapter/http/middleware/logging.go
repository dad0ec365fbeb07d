package middleware

import (
	"net/http"
	"time"
)

// quietPaths are polled by probes and scrapers; they are logged at debug only.
var quietPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// Logging writes one line per finished request. Server errors are logged as warnings.
func (m *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newStatusRecorder(w)

		next.ServeHTTP(rw, r)

		ctx := r.Context()
		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.Status(),
			"bytes", rw.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
		}

		switch {
		case rw.Status() >= http.StatusInternalServerError:
			m.log.Warn(ctx, "request failed", args...)
		case quietPaths[r.URL.Path]:
			m.log.Debug(ctx, "request completed", args...)
		default:
			m.log.Info(ctx, "request completed", args...)
		}
	})
}
