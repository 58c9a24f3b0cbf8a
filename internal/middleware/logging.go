package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
)

// RequestIDHeader echoes the request id on responses and errors.
const RequestIDHeader = "X-Request-Id"

// LoggingInterceptor logs every RPC with its procedure, participant, request
// id, duration and error code. Install it outside RequireAuth so rejected
// calls are logged too.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure
			requestID := uuid.NewString()
			info := &call{}
			ctx = context.WithValue(ctx, RequestIDKey, requestID)
			ctx = context.WithValue(ctx, callKey, info)

			resp, err := next(ctx, req)

			duration := time.Since(start).Milliseconds()
			if err != nil {
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					connectErr.Meta().Set(RequestIDHeader, requestID)
					slog.Warn("RPC error",
						"procedure", procedure,
						"code", connectErr.Code(),
						"error", connectErr.Message(),
						"participant", info.participant,
						"request_id", requestID,
						"duration_ms", duration,
					)
				} else {
					slog.Error("RPC error",
						"procedure", procedure,
						"error", err,
						"participant", info.participant,
						"request_id", requestID,
						"duration_ms", duration,
					)
				}
				return resp, err
			}

			resp.Header().Set(RequestIDHeader, requestID)
			slog.Info("RPC ok",
				"procedure", procedure,
				"participant", info.participant,
				"request_id", requestID,
				"duration_ms", duration,
			)
			return resp, err
		}
	}
}
