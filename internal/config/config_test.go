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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tombee/kmsat/internal/log"
	kmsaterrors "github.com/tombee/kmsat/pkg/errors"
)

// isolate points the default config path at an empty directory and clears
// every variable Load reads.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, key := range []string{
		"KMSAT_URL", "KMSAT_USER_EVENTS_URL", "KMSAT_API_KEY", "KMSAT_USER_EVENTS_API_KEY",
		"KMSAT_INSECURE", "KMSAT_PROXY", "KMSAT_TRACE_EXPORTER", "KMSAT_TRACE_ENDPOINT",
		"KMSAT_TRACE_SAMPLE_RATE", "KMSAT_TEST_EVENTS_KEY",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

type fakeResolver map[string]string

func (f fakeResolver) ResolveReference(ctx context.Context, value string) (string, error) {
	if v, ok := f[value]; ok {
		return v, nil
	}
	return "", errors.New("not found")
}

func TestDefault(t *testing.T) {
	p := Default()

	if p.URL != DefaultURL {
		t.Errorf("URL = %q, want %q", p.URL, DefaultURL)
	}
	if p.UserEventsURL != DefaultUserEventsURL {
		t.Errorf("UserEventsURL = %q, want %q", p.UserEventsURL, DefaultUserEventsURL)
	}
	if p.Insecure || p.Proxy {
		t.Error("insecure and proxy should default to false")
	}
	if !p.VerifyTLS() {
		t.Error("TLS verification should be on by default")
	}
}

func TestLoad_YAML(t *testing.T) {
	isolate(t)
	path := writeFile(t, "params.yaml", `
url: https://eu.api.knowbe4.com/
userEventsUrl: https://api.events.knowbe4.com/
apikey:
  password: reporting-token
userEventsApiKey:
  password: events-token
insecure: true
proxy: true
log:
  level: debug
  format: text
tracing:
  exporter:
    type: console
`)

	p, err := Load(context.Background(), LoadOptions{Path: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if p.APIKey.Password != "reporting-token" {
		t.Errorf("APIKey = %q", p.APIKey.Password)
	}
	if p.UserEventsAPIKey.Password != "events-token" {
		t.Errorf("UserEventsAPIKey = %q", p.UserEventsAPIKey.Password)
	}
	if !p.Insecure || p.VerifyTLS() {
		t.Error("insecure: true should disable TLS verification")
	}
	if !p.Proxy {
		t.Error("proxy should be true")
	}
	if p.Log == nil || p.Log.Level != "debug" || p.Log.Format != log.FormatText {
		t.Errorf("Log = %+v", p.Log)
	}
	if p.Tracing.Exporter.Type != "console" {
		t.Errorf("Tracing exporter = %q", p.Tracing.Exporter.Type)
	}
	if got := p.AccountBaseURL(); got != "https://eu.api.knowbe4.com/v1" {
		t.Errorf("AccountBaseURL() = %q", got)
	}
	if got := p.UserEventsBaseURL(); got != "https://api.events.knowbe4.com" {
		t.Errorf("UserEventsBaseURL() = %q", got)
	}
}

func TestLoad_JSON(t *testing.T) {
	isolate(t)
	path := writeFile(t, "params.json", `{
  "url": "https://us.api.knowbe4.com",
  "userEventsUrl": "https://api.events.knowbe4.com",
  "apikey": {"password": "a"},
  "userEventsApiKey": {"password": "b"},
  "insecure": false,
  "proxy": false
}`)

	p, err := Load(context.Background(), LoadOptions{Path: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	path := writeFile(t, "params.yaml", "apikey:\n  password: from-file\n")

	t.Setenv("KMSAT_URL", "https://ca.api.knowbe4.com")
	t.Setenv("KMSAT_API_KEY", "from-env")
	t.Setenv("KMSAT_USER_EVENTS_API_KEY", "events-env")
	t.Setenv("KMSAT_INSECURE", "true")
	t.Setenv("KMSAT_PROXY", "not-a-bool")

	p, err := Load(context.Background(), LoadOptions{Path: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if p.URL != "https://ca.api.knowbe4.com" {
		t.Errorf("URL = %q", p.URL)
	}
	if p.APIKey.Password != "from-env" {
		t.Errorf("env should override file, got %q", p.APIKey.Password)
	}
	if p.UserEventsAPIKey.Password != "events-env" {
		t.Errorf("UserEventsAPIKey = %q", p.UserEventsAPIKey.Password)
	}
	if !p.Insecure {
		t.Error("KMSAT_INSECURE=true should set Insecure")
	}
	if p.Proxy {
		t.Error("unparseable KMSAT_PROXY should be ignored")
	}
}

func TestLoad_EnvFile(t *testing.T) {
	isolate(t)
	envFile := writeFile(t, ".env", "KMSAT_API_KEY=dotenv-key\nKMSAT_USER_EVENTS_API_KEY=dotenv-events\n")
	t.Cleanup(func() {
		os.Unsetenv("KMSAT_API_KEY")
		os.Unsetenv("KMSAT_USER_EVENTS_API_KEY")
	})

	p, err := Load(context.Background(), LoadOptions{EnvFile: envFile})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if p.APIKey.Password != "dotenv-key" || p.UserEventsAPIKey.Password != "dotenv-events" {
		t.Errorf("keys = %q, %q", p.APIKey.Password, p.UserEventsAPIKey.Password)
	}

	_, err = Load(context.Background(), LoadOptions{EnvFile: filepath.Join(t.TempDir(), "missing.env")})
	var cfgErr *kmsaterrors.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Key != "env_file" {
		t.Errorf("missing env file error = %v", err)
	}
}

func TestLoad_DefaultPath(t *testing.T) {
	isolate(t)

	// No file at the default path is fine.
	p, err := Load(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("Load() without default file error = %v", err)
	}
	if p.URL != DefaultURL {
		t.Errorf("URL = %q", p.URL)
	}

	dir, err := ConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("apikey:\n  password: default-path\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err = Load(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if p.APIKey.Password != "default-path" {
		t.Errorf("APIKey = %q", p.APIKey.Password)
	}
}

func TestLoad_Errors(t *testing.T) {
	isolate(t)

	_, err := Load(context.Background(), LoadOptions{Path: filepath.Join(t.TempDir(), "nope.yaml")})
	var cfgErr *kmsaterrors.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Key != "config_file" {
		t.Fatalf("missing explicit file error = %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file should unwrap to os.ErrNotExist: %v", err)
	}
	if got := cfgErr.Cause.Error(); !strings.HasPrefix(got, "failed to read nope.yaml: ") {
		t.Errorf("cause = %q", got)
	}

	bad := writeFile(t, "bad.yaml", "url: [unterminated\n")
	_, err = Load(context.Background(), LoadOptions{Path: bad})
	if err == nil || !strings.Contains(err.Error(), "config_file") {
		t.Fatalf("invalid YAML error = %v", err)
	}
	if !errors.As(err, &cfgErr) || !strings.HasPrefix(cfgErr.Cause.Error(), "failed to parse bad.yaml: ") {
		t.Errorf("invalid YAML cause = %v", cfgErr.Cause)
	}
}

func TestLoad_SecretReferences(t *testing.T) {
	isolate(t)
	path := writeFile(t, "params.yaml", `
apikey:
  password: keychain:reporting
userEventsApiKey:
  password: literal-events
`)

	resolver := fakeResolver{"keychain:reporting": "resolved-reporting"}
	p, err := Load(context.Background(), LoadOptions{Path: path, Resolver: resolver})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if p.APIKey.Password != "resolved-reporting" {
		t.Errorf("APIKey = %q", p.APIKey.Password)
	}
	if p.UserEventsAPIKey.Password != "literal-events" {
		t.Errorf("literal values must pass through, got %q", p.UserEventsAPIKey.Password)
	}

	unresolved := writeFile(t, "unresolved.yaml", "apikey:\n  password: keychain:absent\n")
	_, err = Load(context.Background(), LoadOptions{Path: unresolved, Resolver: resolver})
	var cfgErr *kmsaterrors.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Key != "apikey.password" {
		t.Errorf("unresolved reference error = %v", err)
	}
}

func TestLoad_EnvReferenceWithDefaultResolver(t *testing.T) {
	isolate(t)
	t.Setenv("KMSAT_TEST_EVENTS_KEY", "from-reference")
	path := writeFile(t, "params.yaml", "userEventsApiKey:\n  password: env:KMSAT_TEST_EVENTS_KEY\n")

	p, err := Load(context.Background(), LoadOptions{Path: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if p.UserEventsAPIKey.Password != "from-reference" {
		t.Errorf("UserEventsAPIKey = %q", p.UserEventsAPIKey.Password)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Params {
		p := Default()
		p.APIKey.Password = "a"
		p.UserEventsAPIKey.Password = "b"
		return p
	}

	tests := []struct {
		name    string
		modify  func(*Params)
		wantKey string
		wantMsg string
	}{
		{
			name:   "valid",
			modify: func(p *Params) {},
		},
		{
			name: "both keys missing reports reporting key first",
			modify: func(p *Params) {
				p.APIKey.Password = ""
				p.UserEventsAPIKey.Password = ""
			},
			wantKey: "apikey.password",
			wantMsg: "Missing Reporting API Key. Fill in a valid key in the integration configuration.",
		},
		{
			name:    "user events key missing",
			modify:  func(p *Params) { p.UserEventsAPIKey.Password = "" },
			wantKey: "userEventsApiKey.password",
			wantMsg: "Missing User Events API Key. Fill in a valid key in the integration configuration.",
		},
		{
			name:    "empty url",
			modify:  func(p *Params) { p.URL = "" },
			wantKey: "url",
		},
		{
			name:    "url without scheme",
			modify:  func(p *Params) { p.UserEventsURL = "api.events.knowbe4.com" },
			wantKey: "userEventsUrl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.modify(p)
			err := p.Validate()

			if tt.wantKey == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}

			var cfgErr *kmsaterrors.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() = %v, want ConfigError", err)
			}
			if cfgErr.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", cfgErr.Key, tt.wantKey)
			}
			if tt.wantMsg != "" && kmsaterrors.UserMessage(err) != tt.wantMsg {
				t.Errorf("UserMessage() = %q, want %q", kmsaterrors.UserMessage(err), tt.wantMsg)
			}
		})
	}
}

func TestLogValueRedactsKeys(t *testing.T) {
	p := Default()
	p.APIKey.Password = "super-secret-reporting-1234"
	p.UserEventsAPIKey.Password = "abc"

	got := p.LogValue().String()
	if strings.Contains(got, "super-secret") {
		t.Errorf("LogValue leaked a key: %s", got)
	}
	if !strings.Contains(got, "...1234") || !strings.Contains(got, "[REDACTED]") {
		t.Errorf("LogValue = %s", got)
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	got, err := ConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join("/tmp/xdg", "kmsat", "config.yaml") {
		t.Errorf("ConfigPath() = %q", got)
	}
}
