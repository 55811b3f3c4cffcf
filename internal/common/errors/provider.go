package errors

import (
	"fmt"
	"net/http"
	"time"
)

// Provider identifies the external service a ProviderError came from.
type Provider string

const (
	ProviderNotion   Provider = "notion"
	ProviderAirtable Provider = "airtable"
)

// DisplayName returns the provider name as shown in user-facing messages.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderNotion:
		return "Notion"
	case ProviderAirtable:
		return "Airtable"
	default:
		return string(p)
	}
}

// ErrorKind is the provider-independent failure class of a client call.
type ErrorKind string

const (
	KindUnauthorized  ErrorKind = "unauthorized"
	KindForbidden     ErrorKind = "forbidden"
	KindNotFound      ErrorKind = "not_found"
	KindUnprocessable ErrorKind = "unprocessable"
	KindRateLimited   ErrorKind = "rate_limited"
	KindProvider      ErrorKind = "provider"
)

// ProviderError is returned by every provider client call that fails.
// It is mapped to the public taxonomy exactly once, by ToStandard.
type ProviderError struct {
	Provider     Provider
	Kind         ErrorKind
	Status       int
	ProviderCode string
	Details      string
	RetryAfter   int
	Err          error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s (status %d): %s", e.Provider, e.Kind, e.Status, e.Details)
	}
	return fmt.Sprintf("%s %s: %s", e.Provider, e.Kind, e.Details)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a ProviderError of the given kind.
func NewProviderError(provider Provider, kind ErrorKind, details string) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Details: details}
}

// KindFromStatus classifies a provider HTTP status when no finer provider
// code is available.
func KindFromStatus(status int) ErrorKind {
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusUnprocessableEntity:
		return KindUnprocessable
	case http.StatusTooManyRequests:
		return KindRateLimited
	default:
		return KindProvider
	}
}

// ToStandard maps the provider failure onto the public error taxonomy.
func (e *ProviderError) ToStandard() *StandardError {
	name := e.Provider.DisplayName()

	var code ErrorCode
	var message string
	switch e.Kind {
	case KindUnauthorized:
		code, message = ErrCodeUnauthorized, fmt.Sprintf("Invalid or expired %s token", name)
	case KindForbidden:
		code, message = ErrCodeForbidden, fmt.Sprintf("The %s integration lacks access to this resource", name)
	case KindNotFound:
		code, message = ErrCodeNotFound, fmt.Sprintf("%s resource not found", name)
	case KindUnprocessable:
		code, message = ErrCodeUnprocessable, fmt.Sprintf("%s rejected the request payload", name)
	case KindRateLimited:
		code, message = ErrCodeRateLimitExceeded, fmt.Sprintf("%s rate limit reached", name)
	default:
		code = ErrCodeInternal
		switch e.Provider {
		case ProviderNotion:
			code = ErrCodeNotion
		case ProviderAirtable:
			code = ErrCodeAirtable
		}
		message = fmt.Sprintf("%s request failed", name)
	}

	stdErr := &StandardError{
		Code:       code,
		Message:    message,
		Details:    e.Details,
		HTTPStatus: StatusForCode(code),
		Retryable:  e.Kind == KindRateLimited,
		Timestamp:  time.Now().UTC(),
		Metadata: map[string]interface{}{
			"provider": string(e.Provider),
			"kind":     string(e.Kind),
		},
	}
	if e.Kind == KindRateLimited {
		stdErr.RetryAfter = e.RetryAfter
		if stdErr.RetryAfter <= 0 {
			stdErr.RetryAfter = 1
		}
	}
	if e.Status != 0 {
		stdErr.Metadata["providerStatus"] = e.Status
	}
	if e.ProviderCode != "" {
		stdErr.Metadata["providerCode"] = e.ProviderCode
	}
	return stdErr
}
