package httpapi

import (
	"context"
	"net"

	"rollcall.org/internal/obs"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

const serviceName = "rollcall-api"

// GRPCServer exposes the standard gRPC health service backed by the same
// readiness probe as /readyz, for infrastructure that probes over gRPC.
type GRPCServer struct {
	grpc_health_v1.UnimplementedHealthServer

	readiness readinessChecker
}

// NewGRPCServer creates the gRPC service wrapper.
func NewGRPCServer(r readinessChecker) *GRPCServer {
	return &GRPCServer{readiness: r}
}

// Check evaluates readiness. On failure reports NOT_SERVING.
func (s *GRPCServer) Check(ctx context.Context, _ *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	if err := s.readiness.Check(ctx); err != nil {
		obs.SetReady(false)
		return &grpc_health_v1.HealthCheckResponse{
			Status: grpc_health_v1.HealthCheckResponse_NOT_SERVING,
		}, nil
	}
	obs.SetReady(true)
	return &grpc_health_v1.HealthCheckResponse{
		Status: grpc_health_v1.HealthCheckResponse_SERVING,
	}, nil
}

// Watch is not supported; clients should poll Check.
func (s *GRPCServer) Watch(_ *grpc_health_v1.HealthCheckRequest, _ grpc_health_v1.Health_WatchServer) error {
	return status.Error(codes.Unimplemented, "watch is not supported")
}

// ServeGRPC builds a grpc.Server with the health service registered and
// serves it on lis until the server is stopped.
func ServeGRPC(lis net.Listener, rp ReadyProbe) (*grpc.Server, func() error) {
	srv := grpc.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, NewGRPCServer(rp))
	return srv, func() error { return srv.Serve(lis) }
}
