// Package logging provides structured request logging middleware.
package logging

import (
	"time"

	"github.com/sabormap/sabormap/pkg/middleware/requestid"
	"github.com/sabormap/sabormap/pkg/observability/logger"
	"github.com/sabormap/sabormap/pkg/server/router"
)

// Logging returns middleware that logs one entry per request with method,
// path, status, duration and request ID. Handler errors are logged at error
// level, everything else at info.
func Logging(log logger.Logger) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			start := time.Now()

			err := next(c)

			fields := []any{
				"request_id", requestid.GetRequestID(c.Request().Context()),
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status(),
				"duration_ms", float64(time.Since(start).Microseconds()) / 1000.0,
				"remote_addr", c.Request().RemoteAddr,
			}
			if err != nil {
				fields = append(fields, "error", err.Error())
				log.Error("http request", fields...)
				return err
			}

			log.Info("http request", fields...)
			return nil
		}
	}
}
