package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/kmsat/internal/log"
)

// DefaultTimeout bounds every round trip when no timeout is configured.
const DefaultTimeout = 30 * time.Second

const tracerName = "github.com/tombee/kmsat/internal/operation/transport"

// HTTPTransport implements the Transport interface for HTTP/HTTPS requests.
// Supports bearer and API key authentication with configurable timeouts,
// TLS settings, proxy selection and default headers.
type HTTPTransport struct {
	config *HTTPTransportConfig
	client *http.Client
	logger *slog.Logger
}

// HTTPTransportConfig configures the HTTP transport.
type HTTPTransportConfig struct {
	// Name labels the transport in logs, spans and metrics (default: "http")
	Name string

	// BaseURL is the base URL for requests (required)
	BaseURL string

	// Timeout is the request timeout (default: 30s)
	Timeout time.Duration

	// Headers are default headers applied to all requests
	Headers map[string]string

	// Auth configures authentication
	Auth *AuthConfig

	// TLSInsecure disables TLS certificate validation (default: false)
	TLSInsecure bool

	// Proxy routes requests through the proxy named by HTTP_PROXY,
	// HTTPS_PROXY and NO_PROXY. When false no proxy is used, even if
	// those variables are set.
	Proxy bool

	// Observer receives request outcomes (optional)
	Observer Observer

	// Logger receives request logs (optional)
	Logger *slog.Logger
}

// AuthConfig configures HTTP authentication. Bearer is the only scheme
// KMSAT accepts.
type AuthConfig struct {
	// Type is the authentication type ("bearer")
	Type string

	// Token is the bearer token
	Token string
}

// Validate checks if the configuration is valid.
func (c *HTTPTransportConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}

	if parsedURL.Scheme == "" {
		return fmt.Errorf("base_url must include scheme (http:// or https://)")
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base_url must include host")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("base_url scheme must be http or https, got %q", parsedURL.Scheme)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative, got %v", c.Timeout)
	}

	if c.Auth != nil {
		if err := c.Auth.Validate(); err != nil {
			return fmt.Errorf("invalid auth configuration: %w", err)
		}
	}

	return nil
}

// Validate checks if the auth configuration is valid.
func (a *AuthConfig) Validate() error {
	if a.Type != "bearer" {
		return fmt.Errorf("invalid auth type: %q (must be bearer)", a.Type)
	}
	if a.Token == "" {
		return fmt.Errorf("token is required for bearer auth")
	}
	return nil
}

// NewHTTPTransport creates a new HTTP transport with the given configuration.
func NewHTTPTransport(config *HTTPTransportConfig) (*HTTPTransport, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	var proxy func(*http.Request) (*url.URL, error)
	if config.Proxy {
		proxy = http.ProxyFromEnvironment
	}

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: proxy,

			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,

			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: timeout,
			ExpectContinueTimeout: 1 * time.Second,

			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: config.TLSInsecure,
			},
		},
	}

	logger := config.Logger
	if logger == nil {
		logger = log.Discard()
	}

	return &HTTPTransport{
		config: config,
		client: client,
		logger: log.WithComponent(logger, "transport"),
	}, nil
}

// Name returns the configured transport name, or "http".
func (t *HTTPTransport) Name() string {
	if t.config.Name != "" {
		return t.config.Name
	}
	return "http"
}

// BaseURL returns the configured base URL.
func (t *HTTPTransport) BaseURL() string {
	return t.config.BaseURL
}

// Execute sends a single HTTP request and returns the response.
// Responses with status >= 400 are returned as *TransportError. No retries.
func (t *HTTPTransport) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := t.validateRequest(req); err != nil {
		return nil, &TransportError{
			Type:      ErrorTypeInvalidReq,
			Message:   fmt.Sprintf("invalid request: %s", err.Error()),
			Retryable: false,
			Cause:     err,
		}
	}

	endpoint := req.Endpoint
	if endpoint == "" {
		if u, err := url.Parse(req.URL); err == nil {
			endpoint = u.Path
		}
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, req.Method+" "+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.HTTPRequestMethodKey.String(req.Method),
			semconv.URLPath(endpoint),
		),
	)
	defer span.End()

	start := time.Now()
	resp, err := t.executeOnce(ctx, req)
	duration := time.Since(start)

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) && transportErr.StatusCode != 0 {
		statusCode = transportErr.StatusCode
	}

	if statusCode != 0 {
		span.SetAttributes(semconv.HTTPResponseStatusCode(statusCode))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	if t.config.Observer != nil {
		t.config.Observer.ObserveRequest(t.Name(), endpoint, statusCode, duration)
	}

	t.logger.Debug("http request completed",
		slog.String(log.ClientKey, t.Name()),
		slog.String("method", req.Method),
		slog.String(log.EndpointKey, endpoint),
		slog.Int("status", statusCode),
		slog.Int64(log.DurationKey, duration.Milliseconds()),
	)

	return resp, err
}

// executeOnce executes a single HTTP request.
func (t *HTTPTransport) executeOnce(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := t.buildHTTPRequest(ctx, req)
	if err != nil {
		return nil, &TransportError{
			Type:      ErrorTypeInvalidReq,
			Message:   fmt.Sprintf("failed to build HTTP request: %s", err.Error()),
			Retryable: false,
			Cause:     err,
		}
	}

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, t.classifyHTTPError(ctx, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &TransportError{
			Type:       ErrorTypeConnection,
			StatusCode: 0,
			Message:    fmt.Sprintf("failed to read response body: %s", err.Error()),
			Retryable:  true,
			Cause:      err,
		}
	}

	log.Trace(t.logger, "http response body",
		slog.String(log.ClientKey, t.Name()),
		slog.Int("status", httpResp.StatusCode),
		slog.String("body", string(body)),
	)

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Headers:    httpResp.Header,
		Body:       body,
		Metadata:   make(map[string]interface{}),
	}

	if requestID := httpResp.Header.Get("X-Request-ID"); requestID != "" {
		resp.Metadata[MetadataRequestID] = requestID
	}

	if httpResp.StatusCode >= 400 {
		resp.Metadata[MetadataStatus] = httpResp.Status
		resp.Metadata[MetadataBody] = body
		return nil, t.classifyHTTPStatusError(httpResp.StatusCode, body, resp.Metadata)
	}

	return resp, nil
}

// validateRequest checks if the request is valid.
func (t *HTTPTransport) validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("request is nil")
	}

	if req.Method == "" {
		return fmt.Errorf("method is required")
	}

	validMethods := map[string]bool{
		"GET": true, "POST": true, "PUT": true, "DELETE": true,
		"PATCH": true, "HEAD": true, "OPTIONS": true,
	}
	if !validMethods[req.Method] {
		return fmt.Errorf("invalid HTTP method: %q", req.Method)
	}

	if req.URL == "" {
		return fmt.Errorf("URL is required")
	}

	if _, err := url.Parse(req.URL); err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	return nil
}

// buildHTTPRequest constructs an http.Request from a transport Request.
func (t *HTTPTransport) buildHTTPRequest(ctx context.Context, req *Request) (*http.Request, error) {
	var bodyReader io.Reader
	if req.Body != nil {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
	if err != nil {
		return nil, err
	}

	for key, value := range t.config.Headers {
		httpReq.Header.Set(key, value)
	}

	// Request headers override defaults
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	// Auth is applied last so a request header can never replace the token
	if auth := t.config.Auth; auth != nil {
		httpReq.Header.Set("Authorization", "Bearer "+auth.Token)
	}

	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	return httpReq, nil
}

// classifyHTTPError classifies HTTP client errors into TransportError types.
func (t *HTTPTransport) classifyHTTPError(ctx context.Context, err error) *TransportError {
	if errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled) {
		return &TransportError{
			Type:      ErrorTypeCancelled,
			Message:   "request cancelled",
			Retryable: false,
			Cause:     err,
		}
	}

	if isTimeoutError(err) || errors.Is(err, context.DeadlineExceeded) {
		return &TransportError{
			Type:      ErrorTypeTimeout,
			Message:   "request timeout",
			Retryable: true,
			Cause:     err,
		}
	}

	if isConnectionError(err) {
		return &TransportError{
			Type:      ErrorTypeConnection,
			Message:   fmt.Sprintf("connection error: %s", redactURLError(err)),
			Retryable: true,
			Cause:     err,
		}
	}

	return &TransportError{
		Type:      ErrorTypeConnection,
		Message:   fmt.Sprintf("HTTP error: %s", redactURLError(err)),
		Retryable: true,
		Cause:     err,
	}
}

// classifyHTTPStatusError classifies HTTP status code errors into TransportError types.
func (t *HTTPTransport) classifyHTTPStatusError(statusCode int, body []byte, metadata map[string]interface{}) *TransportError {
	var errorType ErrorType
	var retryable bool

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		errorType = ErrorTypeAuth
	case statusCode == http.StatusTooManyRequests:
		errorType = ErrorTypeRateLimit
		retryable = true
	case statusCode >= 500:
		errorType = ErrorTypeServer
		retryable = true
	case statusCode == http.StatusRequestTimeout:
		errorType = ErrorTypeTimeout
		retryable = true
	default:
		errorType = ErrorTypeClient
	}

	// Small bodies only, to avoid dumping whole pages into messages
	message := fmt.Sprintf("HTTP %d", statusCode)
	if len(body) > 0 && len(body) < 500 {
		message = fmt.Sprintf("HTTP %d: %s", statusCode, strings.TrimSpace(string(body)))
	}

	requestID, _ := metadata[MetadataRequestID].(string)

	return &TransportError{
		Type:       errorType,
		StatusCode: statusCode,
		Message:    message,
		RequestID:  requestID,
		Retryable:  retryable,
		Metadata:   metadata,
	}
}

// redactURLError strips the request URL from *url.Error messages so query
// strings never reach user-facing output.
func redactURLError(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Sprintf("%s: %v", urlErr.Op, urlErr.Err)
	}
	return err.Error()
}

// isTimeoutError checks if an error is a timeout error.
func isTimeoutError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isConnectionError checks if an error is a connection error.
func isConnectionError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	errMsg := strings.ToLower(err.Error())
	connectionKeywords := []string{
		"connection refused",
		"connection reset",
		"no such host",
		"network unreachable",
		"eof",
	}

	for _, keyword := range connectionKeywords {
		if strings.Contains(errMsg, keyword) {
			return true
		}
	}

	return false
}
