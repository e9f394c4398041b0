package errors

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handle maps err to an HTTP response and logs it at the level its
// taxonomy calls for. RequestError is logged at WARN (client fault,
// never retried); PipelineError at ERROR with stage/source attached;
// anything else is treated as an unexpected internal failure.
func Handle(c *gin.Context, log *slog.Logger, err error) {
	if err == nil {
		return
	}

	requestID, _ := c.Get("request_id")
	reqIDStr, _ := requestID.(string)

	switch e := err.(type) {
	case *RequestError:
		log.Warn("request rejected", "request_id", reqIDStr, "status", e.HTTPStatus(), "error", e.Msg)
		c.AbortWithStatusJSON(e.HTTPStatus(), gin.H{"error": e.Msg})
	case *PipelineError:
		log.Error("pipeline failed", "request_id", reqIDStr, "stage", e.Stage, "source", e.Source, "error", e.Error())
		c.AbortWithStatus(http.StatusInternalServerError)
	default:
		log.Error("unhandled error", "request_id", reqIDStr, "error", err.Error())
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

// RecoveryMiddleware turns a panic into a 500 response instead of
// crashing the worker goroutine, logging the recovered value with the
// request ID attached.
func RecoveryMiddleware(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				requestID, _ := c.Get("request_id")
				log.Error("panic recovered", "request_id", requestID, "panic", fmt.Sprintf("%v", r))
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()

		c.Next()

		if len(c.Errors) > 0 {
			if last := c.Errors.Last(); last != nil && last.Err != nil {
				Handle(c, log, last.Err)
			}
		}
	}
}
