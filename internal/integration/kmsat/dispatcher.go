package kmsat

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/tombee/kmsat/internal/config"
	"github.com/tombee/kmsat/internal/log"
	"github.com/tombee/kmsat/internal/operation"
	"github.com/tombee/kmsat/internal/operation/api"
	"github.com/tombee/kmsat/internal/operation/transport"
	"github.com/tombee/kmsat/internal/tracing"
	kmsaterrors "github.com/tombee/kmsat/pkg/errors"
)

// Invocation is one host request: a command name and its arguments.
type Invocation struct {
	Command string
	Args    map[string]string
}

// TransportFactory builds the transport for one client.
type TransportFactory func(cfg *transport.HTTPTransportConfig) (transport.Transport, error)

// Options configures a Dispatcher. All fields are optional.
type Options struct {
	// Logger receives command and request logs. Nil discards.
	Logger *slog.Logger

	// Metrics records requests and command outcomes. Nil disables metrics.
	Metrics *operation.Metrics

	// NewTransport overrides transport construction, mainly for tests.
	NewTransport TransportFactory
}

// Dispatcher maps command names to handlers over one pair of clients.
// A Dispatcher serves a single invocation; create a new one per run.
type Dispatcher struct {
	account    *AccountClient
	userEvents *UserEventClient
	logger     *slog.Logger
	metrics    *operation.Metrics
}

// NewDispatcher validates params and builds both clients. Missing API keys
// fail here, before any request is possible.
func NewDispatcher(params *config.Params, opts Options) (*Dispatcher, error) {
	if params == nil {
		return nil, &kmsaterrors.ConfigError{Reason: "no configuration provided"}
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}

	newTransport := opts.NewTransport
	if newTransport == nil {
		newTransport = defaultTransport
	}

	account, err := newClientConfig(newTransport, params, AccountClientName, params.AccountBaseURL(), params.APIKey.Password, opts.Metrics, logger)
	if err != nil {
		return nil, err
	}
	events, err := newClientConfig(newTransport, params, UserEventsClientName, params.UserEventsBaseURL(), params.UserEventsAPIKey.Password, opts.Metrics, logger)
	if err != nil {
		return nil, err
	}

	return &Dispatcher{
		account:    NewAccountClient(account),
		userEvents: NewUserEventClient(events),
		logger:     logger,
		metrics:    opts.Metrics,
	}, nil
}

func defaultTransport(cfg *transport.HTTPTransportConfig) (transport.Transport, error) {
	return transport.NewHTTPTransport(cfg)
}

// newClientConfig builds a transport carrying exactly one bearer token.
func newClientConfig(factory TransportFactory, params *config.Params, name, baseURL, token string, metrics *operation.Metrics, logger *slog.Logger) (*api.ClientConfig, error) {
	cfg := &transport.HTTPTransportConfig{
		Name:    name,
		BaseURL: baseURL,
		Timeout: transport.DefaultTimeout,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Auth: &transport.AuthConfig{
			Type:  "bearer",
			Token: token,
		},
		TLSInsecure: params.Insecure,
		Proxy:       params.Proxy,
		Logger:      log.WithClient(logger, name),
	}
	if metrics != nil {
		cfg.Observer = metrics
	}

	t, err := factory(cfg)
	if err != nil {
		return nil, &kmsaterrors.ConfigError{
			Key:    name,
			Reason: "failed to create HTTP transport",
			Cause:  err,
		}
	}

	return &api.ClientConfig{Transport: t, BaseURL: baseURL}, nil
}

// Commands returns the supported command names, sorted.
func Commands() []string {
	names := make([]string, 0, len(handlers))
	for name := range handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs inv.Command. Handler failures are returned as
// *CommandError, except the test-module authorization failure, which is
// returned as *AuthorizationError so its message reaches the host as is.
// Unknown commands fail without any request being sent.
func (d *Dispatcher) Dispatch(ctx context.Context, inv Invocation) (*operation.Result, error) {
	correlationID := tracing.FromContext(ctx)
	ctx = tracing.ToContext(ctx, correlationID)

	logger := log.WithCommand(log.WithCorrelationID(d.logger, correlationID.String()), inv.Command)

	ctx, span := tracing.StartCommand(ctx, inv.Command, correlationID)

	var result *operation.Result
	err := log.NewCommandMiddleware(logger).Handler(&log.CommandRequest{
		Command:       inv.Command,
		CorrelationID: correlationID.String(),
		Args:          inv.Args,
	}, func() error {
		var err error
		result, err = d.run(ctx, inv)
		return err
	})

	if result != nil && result.OutputsPrefix != "" {
		span.SetAttributes(map[string]string{"kmsat.outputs_prefix": result.OutputsPrefix})
	}
	span.End(err)
	d.metrics.RecordCommand(inv.Command, err)

	return result, err
}

func (d *Dispatcher) run(ctx context.Context, inv Invocation) (*operation.Result, error) {
	h, ok := handlers[inv.Command]
	if !ok {
		return nil, &CommandError{
			Command: inv.Command,
			Err:     &kmsaterrors.NotImplementedError{Command: inv.Command},
		}
	}

	args := inv.Args
	if args == nil {
		args = map[string]string{}
	}

	result, err := h(ctx, d, args)
	if err != nil {
		var authErr *AuthorizationError
		if errors.As(err, &authErr) {
			return nil, err
		}
		return nil, &CommandError{Command: inv.Command, Err: err}
	}
	return result, nil
}
