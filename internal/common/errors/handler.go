package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrorHandler is the terminal error translator: it normalizes any error
// into a StandardError, logs it once and builds the response envelope.
type ErrorHandler struct {
	logger      Logger
	exposeStack bool
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

// RequestContext carries what the translator logs alongside the error.
type RequestContext struct {
	RequestID       string
	Method          string
	Endpoint        string
	ClientIP        string
	Payload         map[string]interface{}
	Stack           string
	AppendRequestID bool
}

// Envelope is the JSON body of every non-2xx response.
type Envelope struct {
	Error      string       `json:"error"`
	Code       ErrorCode    `json:"code"`
	Details    string       `json:"details"`
	Timestamp  string       `json:"timestamp"`
	RequestID  string       `json:"requestId,omitempty"`
	Fields     []FieldError `json:"fields,omitempty"`
	RetryAfter int          `json:"retryAfter,omitempty"`
	Stack      string       `json:"stack,omitempty"`
}

func NewErrorHandler(logger Logger, exposeStack bool) *ErrorHandler {
	return &ErrorHandler{logger: logger, exposeStack: exposeStack}
}

// Handle classifies err and returns the HTTP status and envelope to emit.
func (h *ErrorHandler) Handle(rc RequestContext, err error) (int, Envelope) {
	stdErr := h.Normalize(err)

	details := stdErr.Details
	if rc.AppendRequestID && rc.RequestID != "" {
		if details == "" {
			details = fmt.Sprintf("requestId: %s", rc.RequestID)
		} else {
			details = fmt.Sprintf("%s (requestId: %s)", details, rc.RequestID)
		}
	}

	env := Envelope{
		Error:      stdErr.Message,
		Code:       stdErr.Code,
		Details:    details,
		Timestamp:  stdErr.Timestamp.Format(time.RFC3339),
		RequestID:  rc.RequestID,
		Fields:     stdErr.Fields,
		RetryAfter: stdErr.RetryAfter,
	}
	if h.exposeStack && stdErr.Code == ErrCodeInternal {
		env.Stack = rc.Stack
	}

	h.logError(rc, stdErr, err)
	return stdErr.Status(), env
}

// Normalize ensures we always have a StandardError.
func (h *ErrorHandler) Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		if stdErr.Timestamp.IsZero() {
			stdErr.Timestamp = time.Now().UTC()
		}
		return stdErr
	}

	var providerErr *ProviderError
	if stderrors.As(err, &providerErr) {
		return providerErr.ToStandard()
	}

	var maxBytesErr *http.MaxBytesError
	if stderrors.As(err, &maxBytesErr) {
		return NewRequestTooLargeError(maxBytesErr.Limit)
	}

	var syntaxErr *json.SyntaxError
	if stderrors.As(err, &syntaxErr) {
		return NewValidationError(fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset), nil)
	}

	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) {
		return NewValidationError("invalid field type", []FieldError{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
			Code:    "INVALID_TYPE",
		}})
	}

	if stderrors.Is(err, io.EOF) || stderrors.Is(err, io.ErrUnexpectedEOF) {
		return NewValidationError("request body must be a JSON object", nil)
	}

	details := "An unexpected error occurred"
	if h.exposeStack {
		details = err.Error()
	}
	return NewInternalError(details)
}

func (h *ErrorHandler) logError(rc RequestContext, stdErr *StandardError, original error) {
	fields := map[string]interface{}{
		"requestId":     rc.RequestID,
		"method":        rc.Method,
		"endpoint":      rc.Endpoint,
		"clientIp":      rc.ClientIP,
		"errorCode":     string(stdErr.Code),
		"errorCategory": GetErrorCategory(stdErr.Code),
		"status":        stdErr.Status(),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"error":         original.Error(),
	}
	if len(rc.Payload) > 0 {
		fields["payload"] = RedactPayload(rc.Payload)
	}
	for k, v := range stdErr.Metadata {
		fields[k] = v
	}

	if stdErr.Status() >= http.StatusInternalServerError {
		if rc.Stack != "" {
			fields["stack"] = rc.Stack
		}
		h.logger.Error("Request failed", fields)
		return
	}
	h.logger.Warn("Request rejected", fields)
}

var sensitiveKeys = []string{"token", "secret", "password", "authorization", "apikey", "api_key", "cookie"}

// RedactPayload returns a copy of payload with secret-looking keys masked.
func RedactPayload(payload map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		if isSensitiveKey(k) {
			out[k] = "[REDACTED]"
			continue
		}
		switch typed := v.(type) {
		case map[string]interface{}:
			out[k] = RedactPayload(typed)
		default:
			out[k] = v
		}
	}
	return out
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
