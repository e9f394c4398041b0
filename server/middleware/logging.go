package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"pixgate/logging"
)

// Logging returns a middleware that logs each request's method, path,
// status, and duration through the shared structured logger, at WARN
// for 4xx and ERROR for 5xx so request failures surface the same way
// the rest of the gateway's error taxonomy does.
func Logging(log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		duration := time.Since(start)
		requestID := c.GetString("request_id")
		status := c.Writer.Status()

		fields := []interface{}{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"status", status,
			"duration_ms", duration.Milliseconds(),
			"client_ip", c.ClientIP(),
		}

		switch {
		case status >= 500:
			log.ErrorWithFields("request completed", fields...)
		case status >= 400:
			log.WarnWithFields("request completed", fields...)
		default:
			log.InfoWithFields("request completed", fields...)
		}
	}
}
