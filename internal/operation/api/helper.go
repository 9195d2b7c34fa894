package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/tombee/kmsat/internal/operation/transport"
)

// BaseClient provides common functionality for vendor API clients.
type BaseClient struct {
	name      string
	transport transport.Transport
	baseURL   string
}

// NewBaseClient creates a new base client.
func NewBaseClient(name string, config *ClientConfig) *BaseClient {
	return &BaseClient{
		name:      name,
		transport: config.Transport,
		baseURL:   strings.TrimRight(config.BaseURL, "/"),
	}
}

// Name returns the client identifier.
func (c *BaseClient) Name() string {
	return c.name
}

// BaseURL returns the base URL requests are built against.
func (c *BaseClient) BaseURL() string {
	return c.baseURL
}

// BuildURL joins path onto the base URL, adding the leading slash if
// path lacks one.
func (c *BaseClient) BuildURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// BuildQueryString constructs a query string from values, dropping keys
// whose values are all empty. Returns "" when nothing remains.
func (c *BaseClient) BuildQueryString(values url.Values) string {
	cleaned := url.Values{}
	for key, vals := range values {
		for _, v := range vals {
			if v != "" {
				cleaned.Add(key, v)
			}
		}
	}

	if len(cleaned) == 0 {
		return ""
	}

	return "?" + cleaned.Encode()
}

// ExecuteRequest sends a request and returns the response. endpoint is the
// path label used for metrics and spans.
func (c *BaseClient) ExecuteRequest(ctx context.Context, method, url, endpoint string, headers map[string]string, body []byte) (*transport.Response, error) {
	req := &transport.Request{
		Method:   method,
		URL:      url,
		Endpoint: endpoint,
		Headers:  headers,
		Body:     body,
	}

	return c.transport.Execute(ctx, req)
}

// Get issues a GET for path (relative to the base URL) with the given query.
func (c *BaseClient) Get(ctx context.Context, path string, query url.Values) (*transport.Response, error) {
	return c.ExecuteRequest(ctx, "GET", c.BuildURL(path)+c.BuildQueryString(query), path, nil, nil)
}

// ParseJSONResponse decodes a JSON response into target. Numbers decode as
// json.Number so values render exactly as the server sent them. An empty
// body leaves target untouched. Anything but whitespace after the first
// value is an error.
func (c *BaseClient) ParseJSONResponse(resp *transport.Response, target interface{}) error {
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(resp.Body))
	dec.UseNumber()
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("failed to parse %s response as JSON: %w", c.name, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("failed to parse %s response as JSON: unexpected data after top-level value", c.name)
	}
	return nil
}
