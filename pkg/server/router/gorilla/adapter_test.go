package gorilla

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sabormap/sabormap/pkg/server/router"
)

func TestPathParamsUseColonSyntax(t *testing.T) {
	r := NewRouter()
	r.GET("/items/:id", func(c router.Context) error {
		return c.String(http.StatusOK, c.Param("id"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/abc123", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "abc123" {
		t.Fatalf("unexpected response: %d %q", rec.Code, rec.Body.String())
	}
}

func TestRegistrationOrderResolvesStaticBeforeParam(t *testing.T) {
	r := NewRouter()
	r.GET("/items/search", func(c router.Context) error {
		return c.String(http.StatusOK, "search")
	})
	r.GET("/items/:id", func(c router.Context) error {
		return c.String(http.StatusOK, "item")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/search", nil))
	if rec.Body.String() != "search" {
		t.Fatalf("static route shadowed: %q", rec.Body.String())
	}
}

func TestGroupPrefix(t *testing.T) {
	r := NewRouter()
	g := r.Group("/api")
	g.GET("/ping", func(c router.Context) error {
		return c.String(http.StatusOK, "pong")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
		t.Fatalf("unexpected response: %d %q", rec.Code, rec.Body.String())
	}
}

func TestMiddlewareRuns(t *testing.T) {
	called := false
	r := NewRouter()
	r.Use(func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			called = true
			return next(c)
		}
	})
	r.GET("/ping", func(c router.Context) error {
		return c.String(http.StatusOK, "pong")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if !called {
		t.Fatal("middleware did not run")
	}
}
