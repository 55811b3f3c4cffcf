package middleware

import (
	"strconv"
	"time"

	"session-provisioner/internal/common/logger"
	"session-provisioner/internal/common/metrics"

	"github.com/gin-gonic/gin"
)

// AccessLog logs one line per request and records request metrics.
func AccessLog(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.InFlightRequests.Inc()
		defer metrics.InFlightRequests.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(elapsed.Seconds())

		fields := map[string]interface{}{
			"requestId":  GetRequestID(c),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"route":      route,
			"status":     status,
			"durationMs": elapsed.Milliseconds(),
			"clientIp":   c.ClientIP(),
			"bytes":      c.Writer.Size(),
		}
		if ua := c.Request.UserAgent(); ua != "" {
			fields["userAgent"] = ua
		}

		switch {
		case status >= 500:
			log.Error("Request completed", fields)
		case status >= 400:
			log.Warn("Request completed", fields)
		default:
			log.Info("Request completed", fields)
		}
	}
}
