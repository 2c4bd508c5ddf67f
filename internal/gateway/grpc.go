// ABOUTME: gRPC health service for bestiary
// ABOUTME: Serves grpc.health.v1 and tracks record store reachability in the background

package gateway

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
)

// RecordsServiceName is the health service name reported alongside the overall ("") status
const RecordsServiceName = "bestiary.Records"

// storePingTimeout bounds a single readiness ping
const storePingTimeout = 2 * time.Second

// createGRPCServer creates a gRPC server with the health service registered.
// Status starts NOT_SERVING until the first store ping succeeds.
func createGRPCServer(logger *slog.Logger) (*grpc.Server, *health.Server) {
	server := grpc.NewServer(
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    15 * time.Second,
			Timeout: 5 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
	)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(RecordsServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(server, hs)

	logger.Debug("gRPC health service registered", "service", RecordsServiceName)
	return server, hs
}

// watchStoreHealth pings the store every interval until ctx is done,
// flipping the gRPC serving status on each transition.
func (g *Gateway) watchStoreHealth(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}

	g.updateServingStatus(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.updateServingStatus(ctx)
		}
	}
}

// updateServingStatus pings the store once and records the result.
// Returns the status that was set.
func (g *Gateway) updateServingStatus(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	pingCtx, cancel := context.WithTimeout(ctx, storePingTimeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := g.store.Ping(pingCtx); err != nil {
		if ctx.Err() != nil {
			// Shutting down; leave the status for health.Shutdown to handle
			return healthpb.HealthCheckResponse_UNKNOWN
		}
		g.logger.Warn("store ping failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	g.health.SetServingStatus("", status)
	g.health.SetServingStatus(RecordsServiceName, status)
	return status
}
