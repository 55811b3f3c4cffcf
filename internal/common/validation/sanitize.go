package validation

import (
	"regexp"
	"strings"
)

var (
	angleBrackets = regexp.MustCompile(`[<>]`)
	scriptScheme  = regexp.MustCompile(`(?i)javascript\s*:`)
	eventHandler  = regexp.MustCompile(`(?i)\bon[a-z]+\s*=`)
)

// SanitizeString trims s and strips angle brackets, script schemes and
// inline event-handler assignments.
func SanitizeString(s string) string {
	s = angleBrackets.ReplaceAllString(s, "")
	s = scriptScheme.ReplaceAllString(s, "")
	s = eventHandler.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Sanitize walks a decoded JSON value and sanitizes every string leaf.
// Object keys are left untouched.
func Sanitize(v interface{}) interface{} {
	switch typed := v.(type) {
	case string:
		return SanitizeString(typed)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(typed))
		for k, val := range typed {
			out[k] = Sanitize(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(typed))
		for i, val := range typed {
			out[i] = Sanitize(val)
		}
		return out
	default:
		return v
	}
}
