package kmsat

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tombee/kmsat/internal/operation/transport"
	kmsaterrors "github.com/tombee/kmsat/pkg/errors"
)

// Error type identifiers returned by ErrorType.
const (
	TypeAPI          = "api"
	TypeAuth         = "auth"
	TypeConnectivity = "connectivity"
)

// AuthorizationMessage is reported by test-module when the API key is rejected.
const AuthorizationMessage = "Authorization Error: make sure API Key is correctly set"

// APIError is a non-200 response from a KMSAT API.
type APIError struct {
	StatusCode int
	Reason     string
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("Error in API call [%d] - %s", e.StatusCode, e.Reason)
	if e.Body != "" {
		msg += "\n" + e.Body
	}
	return msg
}

// IsAuthError returns true if the error is an authentication/authorization error.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsRateLimited returns true if the error is a rate limit error.
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

func (e *APIError) IsUserVisible() bool { return true }
func (e *APIError) UserMessage() string { return e.Error() }
func (e *APIError) Suggestion() string {
	switch {
	case e.IsAuthError():
		return "Check the API key for this endpoint"
	case e.IsRateLimited():
		return "The KMSAT API rate limit was reached; wait before running the command again"
	}
	return ""
}
func (e *APIError) ErrorType() string {
	if e.IsAuthError() {
		return TypeAuth
	}
	return TypeAPI
}
func (e *APIError) IsRetryable() bool { return e.IsRateLimited() || e.StatusCode >= 500 }

// AuthorizationError is returned by test-module when the Reporting API
// rejects the key. The message never includes request headers.
type AuthorizationError struct {
	Cause error
}

// Error implements the error interface.
func (e *AuthorizationError) Error() string { return AuthorizationMessage }

// Unwrap returns the underlying API error.
func (e *AuthorizationError) Unwrap() error { return e.Cause }

func (e *AuthorizationError) IsUserVisible() bool { return true }
func (e *AuthorizationError) UserMessage() string { return AuthorizationMessage }
func (e *AuthorizationError) Suggestion() string {
	return "Update apikey.password or run 'kmsat secrets set reporting'"
}
func (e *AuthorizationError) ErrorType() string { return TypeAuth }
func (e *AuthorizationError) IsRetryable() bool { return false }

// ConnectivityError is a request that never produced an HTTP response.
type ConnectivityError struct {
	Cause error
}

// Error implements the error interface.
func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("Connection error: %v. Verify that the server URL parameter is correct and that you have access to the server from your host.", e.Cause)
}

// Unwrap returns the transport error.
func (e *ConnectivityError) Unwrap() error { return e.Cause }

func (e *ConnectivityError) IsUserVisible() bool { return true }
func (e *ConnectivityError) UserMessage() string { return e.Error() }
func (e *ConnectivityError) Suggestion() string {
	return "Check url, userEventsUrl and the proxy setting"
}
func (e *ConnectivityError) ErrorType() string { return TypeConnectivity }
func (e *ConnectivityError) IsRetryable() bool { return true }

// CommandError reports a failed command in the host's error format.
type CommandError struct {
	Command string
	Err     error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	return fmt.Sprintf("Failed to execute %s command.\nError:\n%s", e.Command, e.Err)
}

// Unwrap returns the handler error.
func (e *CommandError) Unwrap() error { return e.Err }

func (e *CommandError) IsUserVisible() bool { return true }
func (e *CommandError) UserMessage() string { return e.Error() }
func (e *CommandError) Suggestion() string {
	var uv kmsaterrors.UserVisibleError
	if errors.As(e.Err, &uv) {
		return uv.Suggestion()
	}
	return ""
}

// ErrorType reports the type of the underlying failure.
func (e *CommandError) ErrorType() string {
	var ec kmsaterrors.ErrorClassifier
	if errors.As(e.Err, &ec) {
		return ec.ErrorType()
	}
	return ""
}
func (e *CommandError) IsRetryable() bool {
	var ec kmsaterrors.ErrorClassifier
	return errors.As(e.Err, &ec) && ec.IsRetryable()
}

// ParseError converts a transport failure into an APIError (an HTTP
// response was received) or a ConnectivityError (none was). Cancellation
// is returned unchanged.
func ParseError(err error) error {
	if err == nil {
		return nil
	}

	var te *transport.TransportError
	if !errors.As(err, &te) {
		return err
	}

	if te.StatusCode > 0 {
		return &APIError{
			StatusCode: te.StatusCode,
			Reason:     reasonPhrase(te.StatusCode, te.StatusLine()),
			Body:       string(te.Body()),
		}
	}

	if te.IsType(transport.ErrorTypeCancelled) {
		return err
	}

	return &ConnectivityError{Cause: err}
}

// reasonPhrase extracts "Forbidden" from a status line such as "403 Forbidden",
// falling back to the standard text for the code.
func reasonPhrase(code int, statusLine string) string {
	prefix := fmt.Sprintf("%d ", code)
	if reason := strings.TrimSpace(strings.TrimPrefix(statusLine, prefix)); reason != "" && reason != statusLine {
		return reason
	}
	if text := http.StatusText(code); text != "" {
		return text
	}
	return "Unknown"
}

// isAuthFailure reports whether err looks like a rejected API key.
func isAuthFailure(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.IsAuthError() {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Forbidden") || strings.Contains(msg, "Authorization")
}
