package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Error kinds. Every failure returned by a Gateway verb matches exactly one of
// these through errors.Is.
var (
	// ErrUnauthorized is returned when the backend rejects the credential. The credential is already cleared.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRateLimited is returned on 429 responses.
	ErrRateLimited = errors.New("rate limited")
	// ErrRequestFailed is returned for any other unsuccessful backend response.
	ErrRequestFailed = errors.New("request failed")
	// ErrConnection is returned when the backend cannot be reached.
	ErrConnection = errors.New("connection error")
	// ErrValidation is returned by callers that reject input before any request is sent.
	ErrValidation = errors.New("validation error")
)

// Construction errors.
var (
	ErrMissingBaseURL = errors.New("gateway: base URL is required")
	ErrInvalidBaseURL = errors.New("gateway: invalid base URL")
)

const (
	msgUnauthorized = "unauthorized: credential missing or rejected"
	msgConnection   = "connection error: verify that the server is running"
	msgInvalidJSON  = "invalid JSON response"

	// defaultRetryPhrase is used when the backend gives no usable Retry-After.
	defaultRetryPhrase = "1 hour"
)

// Error is the concrete error returned by Gateway operations.
type Error struct {
	// Kind is one of the Err* sentinels above.
	Kind error
	// Status is the HTTP status code, zero for connection and validation errors.
	Status int
	// Message is human-readable and always non-empty.
	Message string
	// RetryAfter is set for rate-limit errors when the backend provided a usable hint.
	RetryAfter time.Duration
	// Details holds the backend's field-level messages, when present.
	Details []string

	cause error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes both the kind and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.cause}
}

// NewValidationError builds a caller-side validation error.
func NewValidationError(message string, details ...string) *Error {
	return &Error{Kind: ErrValidation, Message: message, Details: details}
}

// WithMessage returns a copy of err carrying message but keeping kind, status and cause.
// Errors that are not *Error are wrapped as ErrRequestFailed.
func WithMessage(err error, message string) error {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		cp := *gwErr
		cp.Message = message
		return &cp
	}
	return &Error{Kind: ErrRequestFailed, Message: message, cause: err}
}

// MessageOr returns err's message when err is a *Error, else fallback.
func MessageOr(err error, fallback string) string {
	var gwErr *Error
	if errors.As(err, &gwErr) && gwErr.Message != "" {
		return gwErr.Message
	}
	return fallback
}

// StatusOf returns the HTTP status carried by err, or zero.
func StatusOf(err error) int {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Status
	}
	return 0
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

func unauthorizedError() *Error {
	return &Error{Kind: ErrUnauthorized, Status: http.StatusUnauthorized, Message: msgUnauthorized}
}

func connectionError(cause error) *Error {
	return &Error{Kind: ErrConnection, Message: msgConnection, cause: cause}
}

func rateLimitError(retryAfter time.Duration, known bool) *Error {
	wait := defaultRetryPhrase
	if known {
		wait = fmt.Sprintf("%d seconds", int64(retryAfter/time.Second))
	} else {
		retryAfter = 0
	}
	return &Error{
		Kind:       ErrRateLimited,
		Status:     http.StatusTooManyRequests,
		Message:    fmt.Sprintf("rate limit exceeded: wait %s or use a new API key", wait),
		RetryAfter: retryAfter,
	}
}
