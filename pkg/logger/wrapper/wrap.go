package wrap

import (
	"context"
	"errors"
)

type (
	// LogCtx holds contextual information for logging
	LogCtx struct {
		Action    string
		UserID    string
		RequestID string
		RideID    string
		ConnID    string
	}

	logCtxKeyStruct struct{}
)

// LogCtxKey is the key for log context values
var LogCtxKey = &logCtxKeyStruct{}

// FromContext returns the LogCtx stored in ctx, or an empty one.
func FromContext(ctx context.Context) LogCtx {
	lc, _ := ctx.Value(LogCtxKey).(LogCtx)
	return lc
}

func with(ctx context.Context, set func(lc *LogCtx)) context.Context {
	lc := FromContext(ctx)
	set(&lc)
	return context.WithValue(ctx, LogCtxKey, lc)
}

// WithLogCtx merges the non-empty fields of newLc into the LogCtx of ctx.
func WithLogCtx(ctx context.Context, newLc LogCtx) context.Context {
	return with(ctx, func(lc *LogCtx) {
		if newLc.Action != "" {
			lc.Action = newLc.Action
		}
		if newLc.UserID != "" {
			lc.UserID = newLc.UserID
		}
		if newLc.RequestID != "" {
			lc.RequestID = newLc.RequestID
		}
		if newLc.RideID != "" {
			lc.RideID = newLc.RideID
		}
		if newLc.ConnID != "" {
			lc.ConnID = newLc.ConnID
		}
	})
}

func WithAction(ctx context.Context, action string) context.Context {
	return with(ctx, func(lc *LogCtx) { lc.Action = action })
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return with(ctx, func(lc *LogCtx) { lc.UserID = userID })
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return with(ctx, func(lc *LogCtx) { lc.RequestID = requestID })
}

func WithRideID(ctx context.Context, rideID string) context.Context {
	return with(ctx, func(lc *LogCtx) { lc.RideID = rideID })
}

// WithConnID tags the context with a websocket connection id.
func WithConnID(ctx context.Context, connID string) context.Context {
	return with(ctx, func(lc *LogCtx) { lc.ConnID = connID })
}

// errorWithLogCtx carries the LogCtx that was active where the error happened.
type errorWithLogCtx struct {
	err    error
	logCtx LogCtx
}

func (e *errorWithLogCtx) Error() string {
	return e.err.Error()
}

func (e *errorWithLogCtx) Unwrap() error {
	return e.err
}

// Error wraps err with the LogCtx of ctx. A nil err stays nil.
func Error(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	return &errorWithLogCtx{
		err:    err,
		logCtx: FromContext(ctx),
	}
}

// ErrorCtx restores the LogCtx captured by Error, so the log line points
// at the place the error was produced rather than where it is logged.
func ErrorCtx(ctx context.Context, err error) context.Context {
	var e *errorWithLogCtx
	if errors.As(err, &e) && e != nil {
		return context.WithValue(ctx, LogCtxKey, e.logCtx)
	}
	return ctx
}
