// Package errors provides the standardized error taxonomy shared by the
// request pipeline, the provider clients and the provisioning services.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents the stable, caller-visible error codes.
type ErrorCode string

// Request pipeline errors
const (
	ErrCodeValidation                    ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidContentType            ErrorCode = "INVALID_CONTENT_TYPE"
	ErrCodeRequestTooLarge               ErrorCode = "REQUEST_TOO_LARGE"
	ErrCodeRateLimitExceeded             ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeProvisioningRateLimitExceeded ErrorCode = "PROVISIONING_RATE_LIMIT_EXCEEDED"
	ErrCodeSecurityViolation             ErrorCode = "SECURITY_VIOLATION"
	ErrCodeRouteNotFound                 ErrorCode = "ROUTE_NOT_FOUND"
	ErrCodeMethodNotAllowed              ErrorCode = "METHOD_NOT_ALLOWED"
)

// Provider errors
const (
	ErrCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden     ErrorCode = "FORBIDDEN"
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeUnprocessable ErrorCode = "UNPROCESSABLE_ENTITY"
	ErrCodeNotion        ErrorCode = "NOTION_ERROR"
	ErrCodeAirtable      ErrorCode = "AIRTABLE_ERROR"
)

const ErrCodeInternal ErrorCode = "INTERNAL_ERROR"

// FieldError describes one schema violation in a request body.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// StandardError represents a structured application error.
type StandardError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Retryable  bool                   `json:"retryable"`
	RetryAfter int                    `json:"retryAfter,omitempty"`
	Fields     []FieldError           `json:"fields,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Status returns the HTTP status for the error, falling back to the code table.
func (e *StandardError) Status() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	return StatusForCode(e.Code)
}

var statusByCode = map[ErrorCode]int{
	ErrCodeValidation:                    http.StatusBadRequest,
	ErrCodeInvalidContentType:            http.StatusUnsupportedMediaType,
	ErrCodeRequestTooLarge:               http.StatusRequestEntityTooLarge,
	ErrCodeRateLimitExceeded:             http.StatusTooManyRequests,
	ErrCodeProvisioningRateLimitExceeded: http.StatusTooManyRequests,
	ErrCodeSecurityViolation:             http.StatusForbidden,
	ErrCodeRouteNotFound:                 http.StatusNotFound,
	ErrCodeMethodNotAllowed:              http.StatusMethodNotAllowed,
	ErrCodeUnauthorized:                  http.StatusUnauthorized,
	ErrCodeForbidden:                     http.StatusForbidden,
	ErrCodeNotFound:                      http.StatusNotFound,
	ErrCodeUnprocessable:                 http.StatusUnprocessableEntity,
	ErrCodeNotion:                        http.StatusBadRequest,
	ErrCodeAirtable:                      http.StatusBadRequest,
	ErrCodeInternal:                      http.StatusInternalServerError,
}

// StatusForCode maps an error code to its HTTP status. Unknown codes are 500.
func StatusForCode(code ErrorCode) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ==========================
// 2. Error Constructors
// ==========================

func newStandardError(code ErrorCode, message, details string) *StandardError {
	return &StandardError{
		Code:       code,
		Message:    message,
		Details:    details,
		HTTPStatus: StatusForCode(code),
		Timestamp:  time.Now().UTC(),
	}
}

// NewValidationError creates a 400 carrying every collected field violation.
func NewValidationError(details string, fields []FieldError) *StandardError {
	err := newStandardError(ErrCodeValidation, "Request validation failed", details)
	err.Fields = fields
	return err
}

// NewInvalidContentTypeError creates a 415 for a non-JSON request body.
func NewInvalidContentTypeError(got string) *StandardError {
	if got == "" {
		got = "none"
	}
	return newStandardError(ErrCodeInvalidContentType, "Content-Type must be application/json",
		fmt.Sprintf("received content type: %s", got))
}

// NewRequestTooLargeError creates a 413 for bodies above the configured limit.
func NewRequestTooLargeError(limit int64) *StandardError {
	return newStandardError(ErrCodeRequestTooLarge, "Request body too large",
		fmt.Sprintf("maximum body size is %d bytes", limit))
}

// NewRateLimitError creates a 429 for the given limiter code.
func NewRateLimitError(code ErrorCode, retryAfter int) *StandardError {
	message := "Too many requests"
	if code == ErrCodeProvisioningRateLimitExceeded {
		message = "Too many provisioning requests"
	}
	err := newStandardError(code, message, fmt.Sprintf("retry after %d seconds", retryAfter))
	err.Retryable = true
	err.RetryAfter = retryAfter
	return err
}

// NewSecurityViolationError creates a 403 for a request matching a suspicious pattern.
func NewSecurityViolationError(details string) *StandardError {
	return newStandardError(ErrCodeSecurityViolation, "Request rejected by security screening", details)
}

// NewRouteNotFoundError creates a 404 for an unknown route.
func NewRouteNotFoundError(method, path string) *StandardError {
	return newStandardError(ErrCodeRouteNotFound, "Route not found", fmt.Sprintf("%s %s", method, path))
}

// NewMethodNotAllowedError creates a 405 for a known path with the wrong verb.
func NewMethodNotAllowedError(method, path string) *StandardError {
	return newStandardError(ErrCodeMethodNotAllowed, "Method not allowed", fmt.Sprintf("%s %s", method, path))
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(details string) *StandardError {
	return newStandardError(ErrCodeInternal, "Internal server error", details)
}

// ==========================
// 3. Utility Functions
// ==========================

// GetErrorCategory returns the log category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "RATE_LIMIT"):
		return "RATE_LIMIT"
	case code == ErrCodeSecurityViolation:
		return "SECURITY"
	case code == ErrCodeValidation, code == ErrCodeInvalidContentType, code == ErrCodeRequestTooLarge:
		return "VALIDATION"
	case code == ErrCodeRouteNotFound, code == ErrCodeMethodNotAllowed:
		return "ROUTING"
	case code == ErrCodeUnauthorized, code == ErrCodeForbidden:
		return "PROVIDER_AUTH"
	case code == ErrCodeNotFound, code == ErrCodeUnprocessable, code == ErrCodeNotion, code == ErrCodeAirtable:
		return "PROVIDER"
	default:
		return "INTERNAL"
	}
}

// IsRetryableErrorCode reports whether retrying the same request later can succeed.
func IsRetryableErrorCode(code ErrorCode) bool {
	return code == ErrCodeRateLimitExceeded || code == ErrCodeProvisioningRateLimitExceeded
}
