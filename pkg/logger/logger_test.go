package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	wrap "github.com/hamza-safwan/mini-ride-booking/pkg/logger/wrapper"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log output is not json: %v (%q)", err, buf.String())
	}
	return rec
}

func TestLogger_ContextFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "ride-booking", LevelDebug)

	ctx := wrap.WithAction(context.Background(), "accept_ride")
	ctx = wrap.WithRideID(ctx, "ride-1")
	ctx = wrap.WithUserID(ctx, "user-1")

	l.Info(ctx, "ride accepted")

	rec := decodeLine(t, &buf)
	for key, want := range map[string]string{
		"message": "ride accepted",
		"service": "ride-booking",
		"action":  "accept_ride",
		"ride_id": "ride-1",
		"user_id": "user-1",
		"level":   "INFO",
	} {
		if got, _ := rec[key].(string); got != want {
			t.Fatalf("%s: got %q want %q", key, got, want)
		}
	}
	if _, ok := rec["timestamp"]; !ok {
		t.Fatalf("timestamp is missing")
	}
}

func TestLogger_ErrorCtxRestoresOrigin(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "svc", LevelDebug)

	ctx := wrap.WithRequestID(context.Background(), "req-1")
	inner := wrap.WithAction(ctx, "inner")
	err := wrap.Error(inner, errors.New("boom"))
	err = fmt.Errorf("outer: %w", err)

	l.Error(wrap.ErrorCtx(ctx, err), "failed", err)

	rec := decodeLine(t, &buf)
	if rec["action"] != "inner" {
		t.Fatalf("expected action from error origin, got %v", rec["action"])
	}
	if rec["request_id"] != "req-1" {
		t.Fatalf("expected request id to survive, got %v", rec["request_id"])
	}
	group, _ := rec["error"].(map[string]any)
	if group["msg"] != "outer: boom" {
		t.Fatalf("unexpected error message: %v", group["msg"])
	}
	if _, renamed := group["message"]; renamed {
		t.Fatalf("nested msg must keep its key: %v", group)
	}
	if rec["message"] != "failed" {
		t.Fatalf("top-level message = %v", rec["message"])
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "svc", LevelWarn)

	l.Debug(context.Background(), "hidden")
	l.Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug and info to be filtered, got %q", buf.String())
	}

	l.Warn(context.Background(), "shown")
	if buf.Len() == 0 {
		t.Fatalf("expected warn to be written")
	}
}

func TestWrapError_Nil(t *testing.T) {
	if wrap.Error(context.Background(), nil) != nil {
		t.Fatalf("wrapping nil must return nil")
	}
}

func TestValidateLogLevel(t *testing.T) {
	for _, lvl := range []string{"DEBUG", "info", "Warn", "ERROR"} {
		if !ValidateLogLevel(lvl) {
			t.Fatalf("%s should be valid", lvl)
		}
	}
	if ValidateLogLevel("TRACE") {
		t.Fatalf("TRACE should not be valid")
	}
}
