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

package log

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// redactedValue replaces every occurrence of a known secret.
const redactedValue = "***"

// minEnvSecretLength keeps short values such as "1" or "true" from being
// masked everywhere.
const minEnvSecretLength = 8

// secretSuffixes mark environment variables whose values are secrets.
var secretSuffixes = []string{"_TOKEN", "_SECRET", "_KEY", "_PASSWORD", "_PASS", "_PWD"}

// Redactor replaces known secret values in strings.
// Register secrets before the Redactor is shared between goroutines.
type Redactor struct {
	secrets map[string]struct{}
}

// NewRedactor returns a Redactor for the given values. Empty values are ignored.
func NewRedactor(values ...string) *Redactor {
	r := &Redactor{secrets: make(map[string]struct{})}
	for _, v := range values {
		r.AddSecret(v)
	}
	return r
}

// AddSecret registers a value to be masked.
func (r *Redactor) AddSecret(value string) {
	if value != "" {
		r.secrets[value] = struct{}{}
	}
}

// AddSecretsFromEnv registers the values of KEY=VALUE entries whose key
// ends in a secret suffix such as _KEY or _TOKEN. Values shorter than
// minEnvSecretLength are skipped.
func (r *Redactor) AddSecretsFromEnv(environ []string) {
	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || len(value) < minEnvSecretLength {
			continue
		}
		upper := strings.ToUpper(key)
		for _, suffix := range secretSuffixes {
			if strings.HasSuffix(upper, suffix) {
				r.AddSecret(value)
				break
			}
		}
	}
}

// Len returns the number of registered secrets.
func (r *Redactor) Len() int {
	return len(r.secrets)
}

// Mask replaces all known secrets in s.
func (r *Redactor) Mask(s string) string {
	for secret := range r.secrets {
		if strings.Contains(s, secret) {
			s = strings.ReplaceAll(s, secret, redactedValue)
		}
	}
	return s
}

// RedactingHandler masks secrets in messages and string, error and group
// attributes before passing records to the wrapped handler.
type RedactingHandler struct {
	inner    slog.Handler
	redactor *Redactor
}

// NewRedactingHandler wraps inner.
func NewRedactingHandler(inner slog.Handler, r *Redactor) *RedactingHandler {
	return &RedactingHandler{inner: inner, redactor: r}
}

func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *RedactingHandler) Handle(ctx context.Context, rec slog.Record) error {
	out := slog.NewRecord(rec.Time, rec.Level, h.redactor.Mask(rec.Message), rec.PC)
	rec.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redactAttr(a))
		return true
	})
	return h.inner.Handle(ctx, out)
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.redactAttr(a)
	}
	return &RedactingHandler{inner: h.inner.WithAttrs(redacted), redactor: h.redactor}
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{inner: h.inner.WithGroup(name), redactor: h.redactor}
}

func (h *RedactingHandler) redactAttr(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return slog.String(a.Key, h.redactor.Mask(v.String()))
	case slog.KindGroup:
		group := v.Group()
		redacted := make([]slog.Attr, len(group))
		for i, ga := range group {
			redacted[i] = h.redactAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(redacted...)}
	case slog.KindAny:
		if err, ok := v.Any().(error); ok && err != nil {
			return slog.String(a.Key, h.redactor.Mask(err.Error()))
		}
	}
	return slog.Attr{Key: a.Key, Value: v}
}

func environ() []string {
	return os.Environ()
}
