package middleware

import (
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"

	"session-provisioner/internal/common/errors"

	"github.com/gin-gonic/gin"
)

// ErrorHandler is the terminal translator. Anything earlier in the chain
// reports failure with c.Error and aborts; this middleware turns the last
// error into the JSON envelope. Request ids are appended to details for
// paths under any of appendIDPrefixes.
func ErrorHandler(h *errors.ErrorHandler, appendIDPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		rc := errors.RequestContext{
			RequestID:       GetRequestID(c),
			Method:          c.Request.Method,
			Endpoint:        c.Request.URL.Path,
			ClientIP:        c.ClientIP(),
			Payload:         getPayload(c),
			Stack:           c.GetString(StackKey),
			AppendRequestID: hasAnyPrefix(c.Request.URL.Path, appendIDPrefixes),
		}

		status, env := h.Handle(rc, c.Errors.Last().Err)
		if env.RetryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(env.RetryAfter))
		}
		c.AbortWithStatusJSON(status, env)
	}
}

// Recovery converts a panic into an internal error for ErrorHandler.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				c.Set(StackKey, string(debug.Stack()))
				_ = c.Error(fmt.Errorf("panic: %v", r))
				c.Abort()
			}
		}()
		c.Next()
	}
}

// NotFound and MethodNotAllowed are installed as the engine's fallback handlers.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = c.Error(errors.NewRouteNotFoundError(c.Request.Method, c.Request.URL.Path))
		c.Abort()
	}
}

func MethodNotAllowed() gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = c.Error(errors.NewMethodNotAllowedError(c.Request.Method, c.Request.URL.Path))
		c.Abort()
	}
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
