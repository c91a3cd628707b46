// Package recovery converts handler panics into HTTP 500 responses.
package recovery

import (
	"net/http"
	"runtime/debug"

	"github.com/sabormap/sabormap/pkg/middleware/requestid"
	"github.com/sabormap/sabormap/pkg/observability/logger"
	"github.com/sabormap/sabormap/pkg/server/router"
)

// Recovery returns middleware that recovers from panics, logs the stack
// trace, and answers with a generic 500 body when nothing was written yet.
func Recovery(log logger.Logger) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			defer func() {
				if r := recover(); r != nil {
					requestID := requestid.GetRequestID(c.Request().Context())

					log.Error("panic recovered",
						"request_id", requestID,
						"panic", r,
						"stack", string(debug.Stack()),
					)

					if !c.Response().Written() {
						body := map[string]interface{}{
							"message":    "ocurrió un error inesperado",
							"request_id": requestID,
						}
						if err := c.JSON(http.StatusInternalServerError, body); err != nil {
							log.Error("failed to send error response",
								"request_id", requestID,
								"error", err,
							)
						}
					}
				}
			}()

			return next(c)
		}
	}
}
