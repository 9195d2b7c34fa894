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
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/tombee/kmsat"

// CommandSpan wraps the span of one dispatched command.
type CommandSpan struct {
	span trace.Span
}

// StartCommand creates the root span for a command invocation using the
// global tracer provider.
func StartCommand(ctx context.Context, command string, correlationID CorrelationID) (context.Context, *CommandSpan) {
	attrs := []attribute.KeyValue{
		attribute.String("kmsat.command", command),
		attribute.String("span.type", "command"),
	}
	if correlationID != "" {
		attrs = append(attrs, attribute.String("correlation_id", correlationID.String()))
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, fmt.Sprintf("command: %s", command),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)

	return ctx, &CommandSpan{span: span}
}

// SetAttributes adds string attributes to the span.
func (c *CommandSpan) SetAttributes(attrs map[string]string) {
	if c == nil || c.span == nil {
		return
	}
	kvs := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		kvs = append(kvs, attribute.String(k, v))
	}
	c.span.SetAttributes(kvs...)
}

// End finishes the span, marking it failed when err is non-nil.
func (c *CommandSpan) End(err error) {
	if c == nil || c.span == nil {
		return
	}
	if err != nil {
		c.span.RecordError(err)
		c.span.SetStatus(codes.Error, err.Error())
	} else {
		c.span.SetStatus(codes.Ok, "")
	}
	c.span.End()
}
