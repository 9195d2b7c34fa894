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
	"os"
	"strconv"
	"strings"
)

// Config holds tracing configuration.
type Config struct {
	// ServiceName identifies this service in traces (default: kmsat).
	ServiceName string `yaml:"service_name,omitempty"`

	// ServiceVersion is the application version.
	ServiceVersion string `yaml:"-"`

	// SampleRate is the fraction of traces to sample (0.0 - 1.0).
	// Zero means sample all traces.
	SampleRate float64 `yaml:"sample_rate,omitempty"`

	// Exporter configures where spans are sent.
	Exporter ExporterConfig `yaml:"exporter,omitempty"`
}

// ExporterConfig defines a span export destination.
type ExporterConfig struct {
	// Type is the exporter type: "console", "otlp", "otlp_http" or "none".
	Type string `yaml:"type,omitempty"`

	// Endpoint is the OTLP receiver address (host:port).
	Endpoint string `yaml:"endpoint,omitempty"`

	// Headers are additional headers for authentication.
	Headers map[string]string `yaml:"headers,omitempty"`

	// TLS configures secure connections.
	TLS TLSConfig `yaml:"tls,omitempty"`
}

// TLSConfig configures TLS for exporters.
type TLSConfig struct {
	// Enabled activates TLS.
	Enabled bool `yaml:"enabled,omitempty"`

	// VerifyCertificate controls certificate validation.
	VerifyCertificate bool `yaml:"verify_certificate,omitempty"`

	// CACertPath is the path to the CA certificate.
	CACertPath string `yaml:"ca_cert_path,omitempty"`
}

// Enabled reports whether an exporter is configured.
func (c Config) Enabled() bool {
	t := strings.ToLower(c.Exporter.Type)
	return t != "" && t != "none"
}

// ApplyEnv overlays KMSAT_TRACE_* environment variables onto c.
//   - KMSAT_TRACE_EXPORTER: console, otlp, otlp_http, none
//   - KMSAT_TRACE_ENDPOINT: receiver address
//   - KMSAT_TRACE_SAMPLE_RATE: 0.0 - 1.0
func (c *Config) ApplyEnv() {
	if v := os.Getenv("KMSAT_TRACE_EXPORTER"); v != "" {
		c.Exporter.Type = strings.ToLower(v)
	}
	if v := os.Getenv("KMSAT_TRACE_ENDPOINT"); v != "" {
		c.Exporter.Endpoint = v
	}
	if v := os.Getenv("KMSAT_TRACE_SAMPLE_RATE"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			c.SampleRate = rate
		}
	}
}
