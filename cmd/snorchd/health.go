package main

import (
	"errors"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// healthServer exposes the standard gRPC health service.
type healthServer struct {
	server       *grpc.Server
	healthServer *health.Server
	lis          net.Listener
	logger       *zap.Logger
}

func newHealthServer(addr string, logger *zap.Logger) (*healthServer, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("snorchd: health listen %s: %w", addr, err)
	}
	hs := &healthServer{
		server:       grpc.NewServer(),
		healthServer: health.NewServer(),
		lis:          lis,
		logger:       logger.Named("health"),
	}
	grpc_health_v1.RegisterHealthServer(hs.server, hs.healthServer)
	return hs, nil
}

func (hs *healthServer) address() string {
	return hs.lis.Addr().String()
}

// serve blocks until stop is called.
func (hs *healthServer) serve() error {
	hs.healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	hs.logger.Info("serving health", zap.String("address", hs.address()))
	if err := hs.server.Serve(hs.lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func (hs *healthServer) stop() {
	hs.healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	hs.server.GracefulStop()
}
