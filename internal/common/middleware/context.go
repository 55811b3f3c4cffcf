// Package middleware holds the gin request pipeline shared by every route.
package middleware

import (
	"github.com/gin-gonic/gin"
)

// Context keys set by the pipeline.
const (
	RequestIDKey = "requestId"
	RawBodyKey   = "rawBody"
	PayloadKey   = "payload"
	StackKey     = "panicStack"
)

const RequestIDHeader = "X-Request-ID"

// GetRequestID returns the id assigned by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// GetRawBody returns the body bytes captured by Security, or nil.
func GetRawBody(c *gin.Context) []byte {
	if v, ok := c.Get(RawBodyKey); ok {
		if b, ok := v.([]byte); ok {
			return b
		}
	}
	return nil
}

// SetPayload records the decoded request body for error logging.
func SetPayload(c *gin.Context, payload map[string]interface{}) {
	c.Set(PayloadKey, payload)
}

func getPayload(c *gin.Context) map[string]interface{} {
	if v, ok := c.Get(PayloadKey); ok {
		if m, ok := v.(map[string]interface{}); ok {
			return m
		}
	}
	return nil
}
