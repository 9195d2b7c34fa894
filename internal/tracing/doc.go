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

/*
Package tracing provides OpenTelemetry tracing and correlation IDs for kmsat.

Tracing is off unless an exporter is configured. With an exporter, every
dispatched command gets an internal span and every vendor HTTP request a
client span beneath it.

# Configuration

Tracing is configured from the params file:

	tracing:
	  exporter:
	    type: otlp_http
	    endpoint: localhost:4318

or from the environment:

	KMSAT_TRACE_EXPORTER=console
	KMSAT_TRACE_ENDPOINT=localhost:4317

Supported exporter types are console (stderr), otlp (gRPC), otlp_http and
none.

# Usage

	provider, err := tracing.Setup(ctx, cfg)
	if err != nil {
	    return err
	}
	defer provider.Shutdown(context.Background())

	ctx, span := tracing.StartCommand(ctx, "get-account-info", correlationID)
	defer span.End()

# Correlation IDs

A correlation ID (RFC 4122 UUID) is generated per invocation, attached to
the context with ToContext, logged with every line, and recorded on the
command span.
*/
package tracing
