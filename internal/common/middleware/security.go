package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/url"
	"regexp"

	"session-provisioner/internal/common/errors"
	"session-provisioner/internal/common/logger"
	"session-provisioner/internal/common/metrics"

	"github.com/gin-gonic/gin"
)

type threat struct {
	name    string
	pattern *regexp.Regexp
}

var threats = []threat{
	{"path traversal", regexp.MustCompile(`(?i)(\.\./|\.\.\\|%2e%2e(%2f|%5c|/))`)},
	{"script injection", regexp.MustCompile(`(?i)<\s*script`)},
	{"sql injection", regexp.MustCompile(`(?i)union(\s|\+|/\*.*?\*/)+(all(\s|\+)+)?select`)},
	{"script url", regexp.MustCompile(`(?i)(javascript|vbscript)\s*:`)},
	{"html data url", regexp.MustCompile(`(?i)data\s*:\s*text/html`)},
}

func detect(s string) (string, bool) {
	for _, t := range threats {
		if t.pattern.MatchString(s) {
			return t.name, true
		}
	}
	return "", false
}

// detectValue screens every key and string leaf of a decoded JSON value.
func detectValue(v interface{}) (string, bool) {
	switch val := v.(type) {
	case string:
		return detect(val)
	case map[string]interface{}:
		for k, item := range val {
			if name, bad := detect(k); bad {
				return name, true
			}
			if name, bad := detectValue(item); bad {
				return name, true
			}
		}
	case []interface{}:
		for _, item := range val {
			if name, bad := detectValue(item); bad {
				return name, true
			}
		}
	}
	return "", false
}

// Security screens the URL, user agent and body against known attack
// patterns and answers 403 on a match. The body is read once, kept in the
// context and restored for later readers.
func Security(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reject := func(source, name string) {
			metrics.SecurityRejections.WithLabelValues(source).Inc()
			log.Warn("Suspicious request rejected", map[string]interface{}{
				"requestId": GetRequestID(c),
				"clientIp":  c.ClientIP(),
				"source":    source,
				"threat":    name,
			})
			_ = c.Error(errors.NewSecurityViolationError("suspicious " + name + " pattern in request " + source))
			c.Abort()
		}

		target := c.Request.URL.RequestURI()
		if unescaped, err := url.PathUnescape(target); err == nil {
			target += " " + unescaped
		}
		if name, bad := detect(target); bad {
			reject("url", name)
			return
		}

		if name, bad := detect(c.Request.UserAgent()); bad {
			reject("user-agent", name)
			return
		}

		if c.Request.Body != nil {
			data, err := io.ReadAll(c.Request.Body)
			if err != nil {
				_ = c.Error(err)
				c.Abort()
				return
			}
			c.Request.Body = io.NopCloser(bytes.NewReader(data))
			c.Set(RawBodyKey, data)

			var decoded interface{}
			decodedOK := json.Unmarshal(data, &decoded) == nil
			if payload, ok := decoded.(map[string]interface{}); decodedOK && ok {
				SetPayload(c, payload)
			}

			if name, bad := detect(string(data)); bad {
				reject("body", name)
				return
			}
			// JSON escapes slip past the raw scan.
			if decodedOK {
				if name, bad := detectValue(decoded); bad {
					reject("body", name)
					return
				}
			}
		}

		c.Next()
	}
}
