// Package middleware holds shared definitions for the HTTP middleware chain.
package middleware

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

const (
	// RequestIDKey is the context key under which the request ID travels.
	RequestIDKey ContextKey = "request_id"
)
