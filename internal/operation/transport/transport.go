// Package transport provides the HTTP transport used by the vendor clients.
// A transport owns timeouts, TLS verification, proxy selection, default
// headers and bearer authentication, and classifies failures as
// TransportError values.
package transport

import (
	"context"
	"time"
)

// Transport executes requests against a remote API.
type Transport interface {
	// Execute sends a request and returns a response.
	// The context controls cancellation and deadlines.
	// Returns TransportError on failure.
	Execute(ctx context.Context, req *Request) (*Response, error)

	// Name returns the transport identifier used in logs and metrics
	// (e.g., "account", "user_events").
	Name() string
}

// Request represents a transport-agnostic request.
// Transports validate requests before execution and return InvalidRequest errors
// for invalid method, URL, or other protocol violations.
type Request struct {
	// Method is the HTTP method (GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS)
	// Required, must be non-empty
	Method string

	// URL is the full request URL
	// Required, must be valid per RFC 3986
	URL string

	// Endpoint is the low-cardinality path label used for metrics and spans
	// (e.g., "/account"). Defaults to the URL path.
	Endpoint string

	// Headers are request headers (case-insensitive)
	// Optional, may be nil or empty map
	Headers map[string]string

	// Body is the request body
	// Optional, may be nil or empty slice
	Body []byte
}

// Response represents a transport-agnostic response.
type Response struct {
	// StatusCode is the HTTP status code
	StatusCode int

	// Status is the HTTP status line (e.g., "200 OK")
	Status string

	// Headers contains response headers
	Headers map[string][]string

	// Body is the response body
	Body []byte

	// Metadata contains transport-specific data (e.g., request ID)
	Metadata map[string]interface{}
}

// Standard metadata keys used across transports
const (
	// MetadataRequestID is the service request ID
	MetadataRequestID = "request_id"

	// MetadataStatus is the HTTP status line of a failed response
	MetadataStatus = "status"

	// MetadataBody is the raw body of a failed response
	MetadataBody = "body"
)

// Observer receives one observation per completed request. Failed requests
// that never produced a status code are reported with statusCode 0.
type Observer interface {
	ObserveRequest(transport, endpoint string, statusCode int, duration time.Duration)
}
