// Package router abstracts HTTP routing so the serving stack can swap
// implementations (gin-gonic or gorilla/mux) behind one interface.
package router

import "net/http"

// Router registers handlers for HTTP method and path patterns.
// Path parameters use the ":name" form regardless of the implementation.
type Router interface {
	GET(path string, handler HandlerFunc, middleware ...MiddlewareFunc)
	POST(path string, handler HandlerFunc, middleware ...MiddlewareFunc)
	PUT(path string, handler HandlerFunc, middleware ...MiddlewareFunc)
	DELETE(path string, handler HandlerFunc, middleware ...MiddlewareFunc)
	PATCH(path string, handler HandlerFunc, middleware ...MiddlewareFunc)

	// Group creates a route group sharing a path prefix and middleware.
	Group(prefix string, middleware ...MiddlewareFunc) Router

	// Use appends middleware applied to every route.
	Use(middleware ...MiddlewareFunc)

	// ServeHTTP implements http.Handler.
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}

// HandlerFunc handles a request through the router-agnostic Context.
type HandlerFunc func(Context) error

// MiddlewareFunc wraps a HandlerFunc with cross-cutting behavior.
type MiddlewareFunc func(HandlerFunc) HandlerFunc

// Context gives handlers router-agnostic access to the request and response.
type Context interface {
	Request() *http.Request
	SetRequest(r *http.Request)

	Response() ResponseWriter
	SetResponse(w ResponseWriter)

	// Param returns a path parameter by name (e.g. /restaurants/:id).
	Param(name string) string

	// Query returns a query-string parameter by name.
	Query(name string) string

	// Bind decodes the JSON request body into v.
	Bind(v interface{}) error

	// JSON writes v as a JSON response with the given status code.
	JSON(code int, v interface{}) error

	// String writes a plain-text response with the given status code.
	String(code int, s string) error

	Get(key string) interface{}
	Set(key string, value interface{})
}

// ResponseWriter extends http.ResponseWriter with response state tracking.
type ResponseWriter interface {
	http.ResponseWriter

	// Status returns the status code written so far.
	Status() int

	// Written reports whether the response has been written.
	Written() bool
}
