package middleware

import (
	"mime"
	"net/http"

	"session-provisioner/internal/common/errors"

	"github.com/gin-gonic/gin"
)

// BodyLimit rejects bodies above limit bytes. Declared lengths are checked
// up front; chunked bodies fail on read with *http.MaxBytesError.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			_ = c.Error(errors.NewRequestTooLargeError(limit))
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// RequireJSON rejects POST, PUT and PATCH requests whose Content-Type is
// not application/json.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		ct := c.GetHeader("Content-Type")
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			_ = c.Error(errors.NewInvalidContentTypeError(ct))
			c.Abort()
			return
		}
		c.Next()
	}
}
