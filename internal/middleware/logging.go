package middleware

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"clinic-management-api/internal/monitoring"
)

// Log writes one line per RPC with method, code, latency, peer and, once
// Auth has accepted the caller, the user id.
func Log(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		start := time.Now()
		holder := &userHolder{}
		resp, err := next(context.WithValue(ctx, holderKey, holder), req)

		code := status.Code(err)
		var ev *zerolog.Event
		switch {
		case err == nil:
			ev = logger.Info()
		case isServerFault(code):
			ev = logger.Error().Err(err)
		default:
			ev = logger.Warn().Str("error", status.Convert(err).Message())
		}
		ev = ev.
			Str("method", info.FullMethod).
			Str("code", code.String()).
			Dur("latency", time.Since(start)).
			Str("peer", callerAddr(ctx))
		if holder.id != 0 {
			ev = ev.Int64("user_id", holder.id)
		}
		ev.Msg("rpc")
		return resp, err
	}
}

// Metrics counts RPCs by method and status code and observes latency.
func Metrics(m *monitoring.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := next(ctx, req)
		m.RPCTotal.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
		m.RPCDuration.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
		return resp, err
	}
}

const holderKey ctxKey = "log-user"

// userHolder lets Auth report the caller back out to Log.
type userHolder struct {
	id int64
}

func noteUser(ctx context.Context, id int64) {
	if h, ok := ctx.Value(holderKey).(*userHolder); ok {
		h.id = id
	}
}
