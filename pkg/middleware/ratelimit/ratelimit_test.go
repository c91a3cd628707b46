package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sabormap/sabormap/pkg/server/router"
	ginrouter "github.com/sabormap/sabormap/pkg/server/router/gin"
)

type fixedLimiter struct{ allow bool }

func (l *fixedLimiter) Allow(string) bool { return l.allow }

func TestRateLimitRejectsWith429(t *testing.T) {
	r := ginrouter.NewRouter()
	r.Use(RateLimit(&fixedLimiter{allow: false}))
	r.GET("/ping", func(c router.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestRateLimitPassesThrough(t *testing.T) {
	r := ginrouter.NewRouter()
	r.Use(RateLimit(&fixedLimiter{allow: true}))
	r.GET("/ping", func(c router.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTokenBucketEnforcesBurst(t *testing.T) {
	limiter := NewTokenBucketLimiter(1, 2)

	if !limiter.Allow("1.2.3.4") || !limiter.Allow("1.2.3.4") {
		t.Fatal("burst capacity must admit the first requests")
	}
	if limiter.Allow("1.2.3.4") {
		t.Fatal("third immediate request must be rejected")
	}
	if !limiter.Allow("5.6.7.8") {
		t.Fatal("another client must have its own bucket")
	}
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	if got := clientKey(req); got != "10.0.0.1" {
		t.Fatalf("expected remote host, got %q", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := clientKey(req); got != "203.0.113.9" {
		t.Fatalf("expected first forwarded address, got %q", got)
	}
}
