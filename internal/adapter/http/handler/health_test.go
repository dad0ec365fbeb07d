package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hamza-safwan/mini-ride-booking/pkg/logger"
)

func TestHealthCheck(t *testing.T) {
	ok := Check{Name: "postgres", Ping: func(context.Context) error { return nil }}
	down := Check{Name: "redis", Ping: func(context.Context) error { return errors.New("connection refused") }}

	tests := []struct {
		name   string
		checks []Check
		code   int
		status string
	}{
		{"no backends", nil, http.StatusOK, "available"},
		{"all reachable", []Check{ok}, http.StatusOK, "available"},
		{"one down", []Check{ok, down}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealth("ride-booking", tt.checks, logger.Discard())
			rec := httptest.NewRecorder()
			h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != tt.code {
				t.Fatalf("status code = %d, want %d", rec.Code, tt.code)
			}
			var body struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != tt.status {
				t.Fatalf("status = %q, want %q", body.Status, tt.status)
			}
			if len(body.Checks) != len(tt.checks) {
				t.Fatalf("checks = %v", body.Checks)
			}
		})
	}
}
