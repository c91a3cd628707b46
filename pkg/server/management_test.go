package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sabormap/sabormap/pkg/config"
	"github.com/sabormap/sabormap/pkg/health"
	"github.com/sabormap/sabormap/pkg/observability/logger"
	"github.com/sabormap/sabormap/pkg/observability/metrics"
	ginrouter "github.com/sabormap/sabormap/pkg/server/router/gin"
)

func newManagementForTest(t *testing.T, registry *health.Registry) *ManagementServer {
	t.Helper()
	log, err := logger.NewZapLogger(logger.Config{Level: logger.ErrorLevel, Format: logger.TextFormat})
	if err != nil {
		t.Fatalf("create logger: %v", err)
	}
	return NewManagementServer(config.ManagementConfig{
		Enabled:      true,
		Port:         0,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}, ginrouter.NewRouter(), log, registry, metrics.NewRegistry())
}

func TestHealthzAlwaysOK(t *testing.T) {
	s := newManagementForTest(t, health.NewRegistry())

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadyzReflectsDependencies(t *testing.T) {
	registry := health.NewRegistry()
	healthy := true
	registry.RegisterFunc("dep", func(ctx context.Context) health.CheckResult {
		if healthy {
			return health.CheckResult{Name: "dep", Status: health.StatusHealthy}
		}
		return health.CheckResult{Name: "dep", Status: health.StatusUnhealthy, Error: "down"}
	})
	s := newManagementForTest(t, registry)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 while healthy, got %d", rec.Code)
	}

	healthy = false
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 while unhealthy, got %d", rec.Code)
	}

	var body health.AggregatedResult
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.IsHealthy() || len(body.Checks) != 1 {
		t.Fatalf("unexpected aggregate: %+v", body)
	}
}

func TestMetricsEndpointServesPrometheusFormat(t *testing.T) {
	s := newManagementForTest(t, health.NewRegistry())

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("expected metrics exposition output")
	}
}
