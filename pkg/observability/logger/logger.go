// Package logger defines the structured logging contract used across the service.
package logger

import "context"

// Logger is the structured logging interface shared by every layer.
// Log methods take a message followed by alternating key-value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// With returns a child logger that includes the given key-value pairs
	// in every subsequent entry.
	With(args ...any) Logger

	// WithContext returns a child logger enriched with request-scoped
	// fields (request ID) extracted from ctx.
	WithContext(ctx context.Context) Logger
}
