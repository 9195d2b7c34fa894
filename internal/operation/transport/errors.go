package transport

import (
	"fmt"
)

// ErrorType classifies transport errors for routing decisions.
type ErrorType string

const (
	// ErrorTypeConnection indicates network or DNS errors
	ErrorTypeConnection ErrorType = "connection"

	// ErrorTypeTimeout indicates request timeout or deadline exceeded
	ErrorTypeTimeout ErrorType = "timeout"

	// ErrorTypeAuth indicates authentication failure (401, 403)
	ErrorTypeAuth ErrorType = "auth"

	// ErrorTypeRateLimit indicates rate limiting (429 Too Many Requests)
	ErrorTypeRateLimit ErrorType = "rate_limit"

	// ErrorTypeServer indicates server errors (5xx)
	ErrorTypeServer ErrorType = "server"

	// ErrorTypeClient indicates other client errors (4xx)
	ErrorTypeClient ErrorType = "client"

	// ErrorTypeInvalidReq indicates request validation error (invalid method, URL, etc.)
	ErrorTypeInvalidReq ErrorType = "invalid_request"

	// ErrorTypeCancelled indicates context was cancelled
	ErrorTypeCancelled ErrorType = "cancelled"
)

// TransportError represents a structured error from transport execution.
// Nothing is retried; Retryable is informational only.
type TransportError struct {
	// Type classifies the error
	Type ErrorType

	// StatusCode is the HTTP status code if applicable
	// Zero for non-HTTP errors (connection, timeout, etc.)
	StatusCode int

	// Message is a user-facing error message with credentials redacted
	Message string

	// RequestID is the request ID from the service, if any
	RequestID string

	// Retryable indicates whether a repeat could succeed
	Retryable bool

	// Cause is the underlying error
	// May contain sensitive data - use Message for user-facing errors
	Cause error

	// Metadata contains response details (status line, body) for callers
	// that format their own vendor errors
	Metadata map[string]interface{}
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns true if a repeat of the request could succeed.
func (e *TransportError) IsRetryable() bool {
	return e.Retryable
}

// IsStatusCode returns true if the error has the given HTTP status code.
func (e *TransportError) IsStatusCode(code int) bool {
	return e.StatusCode == code
}

// IsType returns true if the error is of the given type.
func (e *TransportError) IsType(t ErrorType) bool {
	return e.Type == t
}

// IsAuth reports whether the server rejected the credentials.
func (e *TransportError) IsAuth() bool {
	return e.Type == ErrorTypeAuth
}

// StatusLine returns the HTTP status line recorded for a failed response.
func (e *TransportError) StatusLine() string {
	if s, ok := e.Metadata[MetadataStatus].(string); ok {
		return s
	}
	return ""
}

// Body returns the raw body recorded for a failed response.
func (e *TransportError) Body() []byte {
	if b, ok := e.Metadata[MetadataBody].([]byte); ok {
		return b
	}
	return nil
}
