package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/billreminder/internal/metrics"
)

// LoggingInterceptor logs one line per RPC with the caller and outcome, and
// observes billreminder_rpc_duration_seconds. Install it after RequireAuth so
// the user ID is already in the context.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			elapsed := time.Since(start)

			procedure := req.Spec().Procedure
			code := rpcCode(err)
			metrics.RPCDuration.WithLabelValues(procedure, code).Observe(elapsed.Seconds())

			attrs := []slog.Attr{
				slog.String("procedure", procedure),
				slog.String("code", code),
				slog.String("user_id", GetUserID(ctx)),
				slog.Int64("duration_ms", elapsed.Milliseconds()),
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", errorMessage(err)))
			}
			slog.LogAttrs(ctx, levelFor(err), "RPC completed", attrs...)

			return resp, err
		}
	}
}

func rpcCode(err error) string {
	if err == nil {
		return "ok"
	}
	return connect.CodeOf(err).String()
}

// levelFor logs caller mistakes at warn and server faults at error.
func levelFor(err error) slog.Level {
	if err == nil {
		return slog.LevelInfo
	}
	switch connect.CodeOf(err) {
	case connect.CodeInternal, connect.CodeUnknown, connect.CodeUnavailable, connect.CodeDataLoss:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func errorMessage(err error) string {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr.Message()
	}
	return err.Error()
}
