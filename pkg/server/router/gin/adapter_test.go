package gin

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sabormap/sabormap/pkg/server/router"
)

func TestPathParams(t *testing.T) {
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

func TestStaticRouteCoexistsWithParam(t *testing.T) {
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

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/xyz", nil))
	if rec.Body.String() != "item" {
		t.Fatalf("param route broken: %q", rec.Body.String())
	}
}

func TestGroupPrefixAndMiddlewareOrder(t *testing.T) {
	var order []string
	mw := func(name string) router.MiddlewareFunc {
		return func(next router.HandlerFunc) router.HandlerFunc {
			return func(c router.Context) error {
				order = append(order, name)
				return next(c)
			}
		}
	}

	r := NewRouter()
	r.Use(mw("global"))
	g := r.Group("/api", mw("group"))
	g.GET("/ping", func(c router.Context) error {
		order = append(order, "handler")
		return c.String(http.StatusOK, "pong")
	}, mw("route"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))

	want := []string{"global", "group", "route", "handler"}
	if len(order) != len(want) {
		t.Fatalf("expected order %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, order)
		}
	}
}

func TestJSONNilBodyWritesHeaderOnly(t *testing.T) {
	r := NewRouter()
	r.DELETE("/items/:id", func(c router.Context) error {
		return c.JSON(http.StatusNoContent, nil)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/items/1", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rec.Body.String())
	}
}

func TestBindRejectsNonJSON(t *testing.T) {
	r := NewRouter()
	r.POST("/items", func(c router.Context) error {
		var v map[string]interface{}
		if err := c.Bind(&v); err != nil {
			return c.String(http.StatusBadRequest, err.Error())
		}
		return c.JSON(http.StatusOK, v)
	})

	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader("name=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-JSON body, got %d", rec.Code)
	}
}

func TestQueryParams(t *testing.T) {
	r := NewRouter()
	r.GET("/items", func(c router.Context) error {
		return c.String(http.StatusOK, c.Query("q"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items?q=tacos", nil))
	if rec.Body.String() != "tacos" {
		t.Fatalf("unexpected query value: %q", rec.Body.String())
	}
}
