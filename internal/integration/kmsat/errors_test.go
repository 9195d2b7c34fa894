package kmsat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/kmsat/internal/operation/transport"
	kmsaterrors "github.com/tombee/kmsat/pkg/errors"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{
			name: "with body",
			err:  &APIError{StatusCode: 403, Reason: "Forbidden", Body: `{"message":"Forbidden"}`},
			want: "Error in API call [403] - Forbidden\n{\"message\":\"Forbidden\"}",
		},
		{
			name: "without body",
			err:  &APIError{StatusCode: 500, Reason: "Internal Server Error"},
			want: "Error in API call [500] - Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAPIError_Classification(t *testing.T) {
	assert.True(t, (&APIError{StatusCode: 401}).IsAuthError())
	assert.True(t, (&APIError{StatusCode: 403}).IsAuthError())
	assert.False(t, (&APIError{StatusCode: 404}).IsAuthError())
	assert.True(t, (&APIError{StatusCode: 429}).IsRateLimited())

	assert.Equal(t, TypeAuth, (&APIError{StatusCode: 403}).ErrorType())
	assert.Equal(t, TypeAPI, (&APIError{StatusCode: 404}).ErrorType())
	assert.True(t, (&APIError{StatusCode: 503}).IsRetryable())
	assert.False(t, (&APIError{StatusCode: 400}).IsRetryable())
	assert.True(t, (&APIError{StatusCode: 429}).IsRetryable())
}

func TestAPIError_Suggestion(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{401, "Check the API key for this endpoint"},
		{429, "The KMSAT API rate limit was reached; wait before running the command again"},
		{404, ""},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := &CommandError{Command: CommandGetUserEvents, Err: &APIError{StatusCode: tt.status}}
			assert.Equal(t, tt.want, err.Suggestion())
		})
	}
}

func TestParseError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, ParseError(nil))
	})

	t.Run("status error", func(t *testing.T) {
		err := ParseError(&transport.TransportError{
			Type:       transport.ErrorTypeAuth,
			StatusCode: 403,
			Metadata: map[string]interface{}{
				transport.MetadataStatus: "403 Forbidden",
				transport.MetadataBody:   []byte("denied"),
			},
		})

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "Error in API call [403] - Forbidden\ndenied", apiErr.Error())
	})

	t.Run("status without status line", func(t *testing.T) {
		err := ParseError(&transport.TransportError{Type: transport.ErrorTypeServer, StatusCode: 502})
		assert.Equal(t, "Error in API call [502] - Bad Gateway", err.Error())
	})

	t.Run("connection", func(t *testing.T) {
		cause := &transport.TransportError{Type: transport.ErrorTypeConnection, Message: "dial tcp: connection refused"}
		err := ParseError(cause)

		var connErr *ConnectivityError
		require.True(t, errors.As(err, &connErr))
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("cancelled", func(t *testing.T) {
		cause := &transport.TransportError{Type: transport.ErrorTypeCancelled, Cause: context.Canceled}
		assert.Same(t, cause, ParseError(cause))
	})

	t.Run("foreign error", func(t *testing.T) {
		cause := errors.New("missing required parameter: id")
		assert.Same(t, cause, ParseError(cause))
	})
}

func TestReasonPhrase(t *testing.T) {
	assert.Equal(t, "Forbidden", reasonPhrase(403, "403 Forbidden"))
	assert.Equal(t, "Custom Reason", reasonPhrase(418, "418 Custom Reason"))
	assert.Equal(t, "Not Found", reasonPhrase(404, ""))
	assert.Equal(t, "Unknown", reasonPhrase(599, ""))
}

func TestIsAuthFailure(t *testing.T) {
	assert.True(t, isAuthFailure(&APIError{StatusCode: 401, Reason: "Unauthorized"}))
	assert.True(t, isAuthFailure(fmt.Errorf("proxy said: Forbidden")))
	assert.True(t, isAuthFailure(errors.New("Authorization header rejected")))
	assert.False(t, isAuthFailure(&APIError{StatusCode: 500, Reason: "Internal Server Error"}))
}

func TestCommandError(t *testing.T) {
	inner := &APIError{StatusCode: 429, Reason: "Too Many Requests"}
	err := &CommandError{Command: CommandGetUserEvents, Err: inner}

	assert.Equal(t, "Failed to execute get-user-events command.\nError:\nError in API call [429] - Too Many Requests", err.Error())
	assert.True(t, errors.Is(err, inner))
	assert.Equal(t, TypeAPI, err.ErrorType())
	assert.True(t, err.IsRetryable())
	assert.Equal(t, err.Error(), kmsaterrors.UserMessage(err))

	plain := &CommandError{Command: "x", Err: errors.New("boom")}
	assert.Equal(t, "", plain.ErrorType())
	assert.False(t, plain.IsRetryable())
	assert.Equal(t, "", plain.Suggestion())
}

func TestErrorInterfaces(t *testing.T) {
	var _ kmsaterrors.UserVisibleError = (*APIError)(nil)
	var _ kmsaterrors.UserVisibleError = (*AuthorizationError)(nil)
	var _ kmsaterrors.UserVisibleError = (*ConnectivityError)(nil)
	var _ kmsaterrors.UserVisibleError = (*CommandError)(nil)

	var _ kmsaterrors.ErrorClassifier = (*APIError)(nil)
	var _ kmsaterrors.ErrorClassifier = (*AuthorizationError)(nil)
	var _ kmsaterrors.ErrorClassifier = (*ConnectivityError)(nil)
	var _ kmsaterrors.ErrorClassifier = (*CommandError)(nil)
}
