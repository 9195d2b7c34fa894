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

package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/tombee/kmsat/internal/log"
	"github.com/tombee/kmsat/internal/secrets"
	"github.com/tombee/kmsat/internal/tracing"
	kmsaterrors "github.com/tombee/kmsat/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultURL is the KMSAT Reporting API host (US region).
	DefaultURL = "https://us.api.knowbe4.com"

	// DefaultUserEventsURL is the KMSAT User Events API host.
	DefaultUserEventsURL = "https://api.events.knowbe4.com"
)

// Messages reported when an API key is absent. These are shown to the host
// verbatim.
const (
	MissingReportingKeyMessage  = "Missing Reporting API Key. Fill in a valid key in the integration configuration."
	MissingUserEventsKeyMessage = "Missing User Events API Key. Fill in a valid key in the integration configuration."
)

// Params is the connector configuration supplied once per invocation.
// It is never mutated after Load returns.
type Params struct {
	// URL is the Reporting API base URL. "/v1" is appended for requests.
	URL string `yaml:"url"`

	// UserEventsURL is the User Events API base URL, used as-is.
	UserEventsURL string `yaml:"userEventsUrl"`

	// APIKey holds the Reporting API bearer token.
	APIKey Credential `yaml:"apikey"`

	// UserEventsAPIKey holds the User Events API bearer token.
	UserEventsAPIKey Credential `yaml:"userEventsApiKey"`

	// Insecure disables TLS certificate verification.
	Insecure bool `yaml:"insecure"`

	// Proxy routes requests through the proxy named in the environment.
	Proxy bool `yaml:"proxy"`

	// Log overrides logging settings. Environment variables still win.
	Log *log.Config `yaml:"log,omitempty"`

	// Tracing configures span export. Disabled when empty.
	Tracing tracing.Config `yaml:"tracing,omitempty"`
}

// Credential mirrors the host's credential shape: {password: <token>}.
// The password may be a secret reference (env:, ${}, keychain:).
type Credential struct {
	Password string `yaml:"password"`
}

// Default returns Params with the public KMSAT endpoints and no keys.
func Default() *Params {
	return &Params{
		URL:           DefaultURL,
		UserEventsURL: DefaultUserEventsURL,
	}
}

// SecretResolver turns secret references into values.
type SecretResolver interface {
	ResolveReference(ctx context.Context, value string) (string, error)
}

// LoadOptions controls where Load reads configuration from.
type LoadOptions struct {
	// Path is the params file. Empty means the default path, which may be absent.
	Path string

	// EnvFile is a dotenv file loaded before environment overrides are read.
	// Variables already set in the process environment are kept.
	EnvFile string

	// Resolver resolves API key references. Nil uses the env and keychain
	// backends, created only when a reference is present.
	Resolver SecretResolver
}

// Load builds Params from defaults, the params file, and environment
// overrides (in that order), then resolves secret references.
// Load does not require the API keys; see Validate.
func Load(ctx context.Context, opts LoadOptions) (*Params, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return nil, &kmsaterrors.ConfigError{
				Key:    "env_file",
				Reason: fmt.Sprintf("failed to load %s", opts.EnvFile),
				Cause:  err,
			}
		}
	}

	p := Default()

	path := opts.Path
	explicit := path != ""
	if !explicit {
		if def, err := ConfigPath(); err == nil {
			path = def
		}
	}

	if path != "" {
		if err := p.loadFromFile(path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, &kmsaterrors.ConfigError{
					Key:    "config_file",
					Reason: fmt.Sprintf("failed to load from %s", path),
					Hint:   "Check the file exists and is valid YAML or JSON",
					Cause:  err,
				}
			}
		}
	}

	p.loadFromEnv()

	if err := p.resolveSecrets(ctx, opts.Resolver); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Params) loadFromFile(path string) error {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return kmsaterrors.Wrap(err, "failed to get home directory")
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return kmsaterrors.Wrapf(err, "failed to read %s", filepath.Base(path))
	}

	if err := yaml.Unmarshal(data, p); err != nil {
		return kmsaterrors.Wrapf(err, "failed to parse %s", filepath.Base(path))
	}

	return nil
}

// loadFromEnv applies KMSAT_* environment overrides.
func (p *Params) loadFromEnv() {
	if val := os.Getenv("KMSAT_URL"); val != "" {
		p.URL = val
	}
	if val := os.Getenv("KMSAT_USER_EVENTS_URL"); val != "" {
		p.UserEventsURL = val
	}
	if val := os.Getenv("KMSAT_API_KEY"); val != "" {
		p.APIKey.Password = val
	}
	if val := os.Getenv("KMSAT_USER_EVENTS_API_KEY"); val != "" {
		p.UserEventsAPIKey.Password = val
	}
	if val := os.Getenv("KMSAT_INSECURE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			p.Insecure = b
		}
	}
	if val := os.Getenv("KMSAT_PROXY"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			p.Proxy = b
		}
	}

	p.Tracing.ApplyEnv()
}

func (p *Params) resolveSecrets(ctx context.Context, resolver SecretResolver) error {
	fields := []struct {
		key   string
		value *string
	}{
		{"apikey.password", &p.APIKey.Password},
		{"userEventsApiKey.password", &p.UserEventsAPIKey.Password},
	}

	for _, f := range fields {
		if !secrets.IsReference(*f.value) {
			continue
		}
		if resolver == nil {
			resolver = secrets.NewDefaultResolver()
		}
		value, err := resolver.ResolveReference(ctx, *f.value)
		if err != nil {
			return &kmsaterrors.ConfigError{
				Key:    f.key,
				Reason: "failed to resolve secret reference",
				Hint:   "Store the key with 'kmsat secrets set' or export the referenced variable",
				Cause:  err,
			}
		}
		*f.value = value
	}
	return nil
}

// Validate checks the API keys, reporting key first, then the base URLs.
// It must pass before any request is made.
func (p *Params) Validate() error {
	if p.APIKey.Password == "" {
		return &kmsaterrors.ConfigError{
			Key:    "apikey.password",
			Reason: MissingReportingKeyMessage,
			Hint:   "Set apikey.password in the params file or export KMSAT_API_KEY",
		}
	}
	if p.UserEventsAPIKey.Password == "" {
		return &kmsaterrors.ConfigError{
			Key:    "userEventsApiKey.password",
			Reason: MissingUserEventsKeyMessage,
			Hint:   "Set userEventsApiKey.password in the params file or export KMSAT_USER_EVENTS_API_KEY",
		}
	}
	if err := validateBaseURL("url", p.URL); err != nil {
		return err
	}
	return validateBaseURL("userEventsUrl", p.UserEventsURL)
}

// AccountBaseURL is the Reporting API root: the configured URL joined with "/v1".
func (p *Params) AccountBaseURL() string {
	return strings.TrimRight(p.URL, "/") + "/v1"
}

// UserEventsBaseURL is the User Events API root without a trailing slash.
func (p *Params) UserEventsBaseURL() string {
	return strings.TrimRight(p.UserEventsURL, "/")
}

// VerifyTLS reports whether certificates are checked (the inverse of Insecure).
func (p *Params) VerifyTLS() bool {
	return !p.Insecure
}

// LogValue keeps API keys out of logs.
func (p *Params) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("url", p.URL),
		slog.String("userEventsUrl", p.UserEventsURL),
		slog.String("apikey", log.SanitizeAPIKey(p.APIKey.Password)),
		slog.String("userEventsApiKey", log.SanitizeAPIKey(p.UserEventsAPIKey.Password)),
		slog.Bool("insecure", p.Insecure),
		slog.Bool("proxy", p.Proxy),
	)
}
