// Package metrics records Prometheus metrics per HTTP request.
package metrics

import (
	"time"

	"github.com/sabormap/sabormap/pkg/observability/metrics"
	"github.com/sabormap/sabormap/pkg/server/router"
)

// Metrics returns middleware that tracks request duration, request count
// and in-flight requests.
func Metrics() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			metrics.IncrementInFlight()
			defer metrics.DecrementInFlight()

			start := time.Now()
			err := next(c)

			metrics.RecordHTTPMetrics(
				c.Request().Method,
				c.Request().URL.Path,
				c.Response().Status(),
				time.Since(start),
			)

			return err
		}
	}
}
