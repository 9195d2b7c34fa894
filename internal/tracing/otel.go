// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// DefaultServiceName is reported when the config names no service.
const DefaultServiceName = "kmsat"

// Provider owns the SDK tracer provider. A zero Provider is a valid no-op,
// used when tracing is disabled.
type Provider struct {
	tp *sdktrace.TracerProvider
}

// Setup builds a Provider from cfg and installs it globally. With no
// exporter configured it returns a no-op Provider and leaves the global
// (no-op) tracer provider in place.
func Setup(ctx context.Context, cfg Config) (*Provider, error) {
	if !cfg.Enabled() {
		return &Provider{}, nil
	}

	exporter, err := CreateExporter(ctx, cfg.Exporter)
	if err != nil {
		return nil, err
	}

	sampler := sdktrace.AlwaysSample()
	if cfg.SampleRate > 0 && cfg.SampleRate < 1 {
		sampler = sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))
	}

	name := cfg.ServiceName
	if name == "" {
		name = DefaultServiceName
	}

	return NewOTelProvider(name, cfg.ServiceVersion,
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sampler),
	)
}

// NewOTelProvider creates an OpenTelemetry tracer provider and installs it,
// together with the W3C propagator, as the global provider.
func NewOTelProvider(serviceName, version string, opts ...sdktrace.TracerProviderOption) (*Provider, error) {
	// Empty schema URL avoids conflicts when merging with the default resource
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	allOpts := append([]sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
	}, opts...)

	tp := sdktrace.NewTracerProvider(allOpts...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(W3CPropagator())

	return &Provider{tp: tp}, nil
}

// Enabled reports whether spans are being recorded.
func (p *Provider) Enabled() bool {
	return p != nil && p.tp != nil
}

// Shutdown flushes any pending spans and releases resources.
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}
	return p.tp.Shutdown(ctx)
}

// ForceFlush exports all pending spans synchronously.
func (p *Provider) ForceFlush(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}
	return p.tp.ForceFlush(ctx)
}
