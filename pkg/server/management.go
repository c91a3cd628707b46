package server

import (
	"net/http"

	"github.com/sabormap/sabormap/pkg/config"
	"github.com/sabormap/sabormap/pkg/health"
	"github.com/sabormap/sabormap/pkg/middleware/recovery"
	"github.com/sabormap/sabormap/pkg/middleware/requestid"
	"github.com/sabormap/sabormap/pkg/observability/logger"
	"github.com/sabormap/sabormap/pkg/observability/metrics"
	"github.com/sabormap/sabormap/pkg/server/router"
)

// ManagementServer serves health checks and metrics on a port separate
// from the public API.
type ManagementServer struct {
	*Server
	healthRegistry  *health.Registry
	metricsRegistry *metrics.Registry
}

// NewManagementServer creates the management server with its standard
// endpoints:
//   - /healthz: liveness, always 200 while the process runs
//   - /readyz: readiness, 503 while any dependency check fails
//   - /metrics: Prometheus metrics
//
// The middleware stack is lighter than the public server's: request ID
// and recovery only, to keep probe traffic out of the request log.
func NewManagementServer(
	cfg config.ManagementConfig,
	r router.Router,
	log logger.Logger,
	healthRegistry *health.Registry,
	metricsRegistry *metrics.Registry,
) *ManagementServer {
	r.Use(
		requestid.RequestID(),
		recovery.Recovery(log),
	)

	base := NewServer(Config{
		Port:         cfg.Port,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, r, log)

	s := &ManagementServer{
		Server:          base,
		healthRegistry:  healthRegistry,
		metricsRegistry: metricsRegistry,
	}

	r.GET("/healthz", s.handleHealth)
	r.GET("/readyz", s.handleReady)
	r.GET("/metrics", s.handleMetrics)

	return s
}

func (s *ManagementServer) handleHealth(c router.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "healthy",
	})
}

func (s *ManagementServer) handleReady(c router.Context) error {
	result := s.healthRegistry.Check(c.Request().Context())
	if !result.IsHealthy() {
		return c.JSON(http.StatusServiceUnavailable, result)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *ManagementServer) handleMetrics(c router.Context) error {
	s.metricsRegistry.Handler().ServeHTTP(c.Response(), c.Request())
	return nil
}
