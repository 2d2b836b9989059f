package handler

import (
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"clinic-management-api/internal/middleware"
	"clinic-management-api/internal/monitoring"
	"clinic-management-api/internal/rpc"
)

// NewServer builds the gRPC server with the full interceptor chain, every
// clinic service and the standard health service.
func NewServer(h *Handler, log zerolog.Logger, m *monitoring.Metrics, rl *middleware.RateLimiter, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	opts = append(opts, grpc.ChainUnaryInterceptor(
		middleware.Recover(log),
		middleware.Log(log),
		middleware.Metrics(m),
		middleware.RateLimit(rl, m),
		middleware.Auth(h.svc),
		middleware.Validate(middleware.NewValidator()),
	))
	srv := grpc.NewServer(opts...)
	rpc.Register(srv, h.Servers())

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	for _, name := range rpc.ServiceNames() {
		hs.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}
	return srv, hs
}
