package middleware

import (
	"strconv"

	"session-provisioner/internal/common/errors"
	"session-provisioner/internal/common/logger"
	"session-provisioner/internal/common/metrics"
	"session-provisioner/internal/common/ratelimit"

	"github.com/gin-gonic/gin"
)

type RateLimitOptions struct {
	Name      string
	Limiter   ratelimit.Limiter
	Code      errors.ErrorCode
	SkipPaths []string
	Logger    logger.Logger
}

// RateLimit counts each request against the limiter, keyed by client IP.
// A failing store lets the request through.
func RateLimit(opts RateLimitOptions) gin.HandlerFunc {
	skip := make(map[string]bool, len(opts.SkipPaths))
	for _, p := range opts.SkipPaths {
		skip[p] = true
	}
	code := opts.Code
	if code == "" {
		code = errors.ErrCodeRateLimitExceeded
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		d, err := opts.Limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil && opts.Logger != nil {
			opts.Logger.Warn("Rate limit store unavailable, allowing request", map[string]interface{}{
				"limiter":   opts.Name,
				"requestId": GetRequestID(c),
				"error":     err.Error(),
			})
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.ResetAt.IsZero() {
			c.Header("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
		}

		if !d.Allowed {
			metrics.RateLimitRejections.WithLabelValues(opts.Name).Inc()
			_ = c.Error(errors.NewRateLimitError(code, d.RetryAfter))
			c.Abort()
			return
		}
		c.Next()
	}
}
