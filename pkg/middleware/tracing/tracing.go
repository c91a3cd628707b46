// Package tracing adds an OpenTelemetry server span to each request.
package tracing

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/sabormap/sabormap/pkg/middleware/requestid"
	"github.com/sabormap/sabormap/pkg/server/router"
)

// Tracing returns middleware that starts a server span per request,
// continuing any trace context found in the incoming headers.
func Tracing(tracerName string) router.MiddlewareFunc {
	if tracerName == "" {
		tracerName = "http-server"
	}
	tracer := otel.Tracer(tracerName)
	propagator := otel.GetTextMapPropagator()

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			req := c.Request()

			ctx := propagator.Extract(req.Context(), propagation.HeaderCarrier(req.Header))
			ctx, span := tracer.Start(
				ctx,
				fmt.Sprintf("HTTP %s %s", req.Method, req.URL.Path),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", req.Method),
					attribute.String("http.target", req.URL.Path),
					attribute.String("request_id", requestid.GetRequestID(req.Context())),
				),
			)
			defer span.End()

			c.SetRequest(req.WithContext(ctx))

			err := next(c)

			status := c.Response().Status()
			span.SetAttributes(attribute.Int("http.status_code", status))
			if err != nil || status >= 500 {
				span.SetStatus(codes.Error, fmt.Sprintf("status %d", status))
			}

			return err
		}
	}
}
