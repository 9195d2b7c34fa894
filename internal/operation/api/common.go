// Package api provides common types and utilities for vendor API clients.
package api

import (
	"github.com/tombee/kmsat/internal/operation/transport"
)

// ClientConfig holds configuration for a vendor API client.
type ClientConfig struct {
	// Transport is the HTTP transport for making requests. It carries the
	// client's credential, so each credential gets its own transport.
	Transport transport.Transport

	// BaseURL is the API base URL, without a trailing slash
	BaseURL string
}
