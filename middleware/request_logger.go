package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/outbound"
)

// RequestLogger logs one structured line per request.
func RequestLogger(logger outbound.LoggerPort) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := map[string]interface{}{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}
		if len(c.Errors) > 0 {
			logger.ErrorWithFields(c.Errors.Last(), "Request failed", fields)
			return
		}
		logger.InfoWithFields("Request handled", fields)
	}
}
