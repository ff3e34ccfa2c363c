// Package health publishes store readiness over the standard gRPC health
// protocol so orchestrators can probe the gateway without going through HTTP.
package health

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the service reported alongside the overall ("") status.
const ServiceName = "leadscout"

const pingTimeout = 2 * time.Second

// Pinger is satisfied by store.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker keeps a grpc health server in sync with the store.
type Checker struct {
	srv    *health.Server
	pinger Pinger
	log    logrus.FieldLogger
}

func New(p Pinger, log logrus.FieldLogger) *Checker {
	c := &Checker{srv: health.NewServer(), pinger: p, log: log}
	c.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return c
}

// Register attaches the health service to s.
func (c *Checker) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, c.srv)
}

// Server exposes the underlying health server.
func (c *Checker) Server() *health.Server { return c.srv }

// Check pings the store once and publishes the result.
func (c *Checker) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := c.pinger.Ping(ctx); err != nil {
		c.log.WithError(err).Warn("Store ping failed, reporting NOT_SERVING")
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	c.set(status)
	return status
}

// Watch re-checks every interval until ctx is done.
func (c *Checker) Watch(ctx context.Context, interval time.Duration) {
	c.Check(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Check(ctx)
		}
	}
}

// Shutdown flips every service to NOT_SERVING and ignores later updates.
func (c *Checker) Shutdown() {
	c.srv.Shutdown()
}

func (c *Checker) set(status healthpb.HealthCheckResponse_ServingStatus) {
	c.srv.SetServingStatus("", status)
	c.srv.SetServingStatus(ServiceName, status)
}
