package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
	wrap "github.com/hamza-safwan/mini-ride-booking/pkg/logger/wrapper"
)

// Recover turns a handler panic into a 500 and logs it with the stack.
// Upgraded websocket connections are not covered: their handler owns the socket.
func (m *Middleware) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			ctx := wrap.WithAction(r.Context(), "recover_panic")
			m.log.Error(ctx, "panic while serving request", fmt.Errorf("panic: %v", rec),
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)

			w.Header().Set("Connection", "close")
			errorResponse(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request", types.KindInternal)
		}()

		next.ServeHTTP(w, r)
	})
}
