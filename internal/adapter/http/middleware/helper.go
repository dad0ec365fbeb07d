package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
)

// errorResponse writes the same {"error","kind"} body the handlers use.
// Unauthorized responses also carry a Bearer challenge.
func errorResponse(w http.ResponseWriter, status int, message string, kind string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="ride-booking"`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "kind": kind})
}

func unauthorized(w http.ResponseWriter, message string) {
	errorResponse(w, http.StatusUnauthorized, message, types.KindUnauthorized)
}
