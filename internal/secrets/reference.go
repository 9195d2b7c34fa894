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

package secrets

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// legacyEnvVarRegex matches ${VAR_NAME} syntax.
var legacyEnvVarRegex = regexp.MustCompile(`^\$\{([A-Za-z_][A-Za-z0-9_]*)\}$`)

// IsReference reports whether value is a secret reference rather than a literal.
func IsReference(value string) bool {
	return strings.HasPrefix(value, "env:") ||
		strings.HasPrefix(value, "keychain:") ||
		legacyEnvVarRegex.MatchString(value)
}

// ResolveReference returns the secret a reference points to. Literal
// values are returned unchanged.
//
//   - env:NAME and ${NAME} read the environment variable NAME
//   - keychain:NAME looks NAME up through r (env overrides, then keychain)
//
// Errors name the reference but never a resolved value.
func (r *Resolver) ResolveReference(ctx context.Context, value string) (string, error) {
	switch {
	case strings.HasPrefix(value, "env:"):
		return lookupEnv(strings.TrimPrefix(value, "env:"))

	case legacyEnvVarRegex.MatchString(value):
		return lookupEnv(legacyEnvVarRegex.FindStringSubmatch(value)[1])

	case strings.HasPrefix(value, "keychain:"):
		key := strings.TrimPrefix(value, "keychain:")
		if key == "" {
			return "", fmt.Errorf("invalid secret reference %q: empty key", value)
		}
		secret, err := r.Get(ctx, key)
		if err != nil {
			return "", fmt.Errorf("resolving %s: %w", value, err)
		}
		return secret, nil

	default:
		return value, nil
	}
}

func lookupEnv(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("invalid secret reference: empty environment variable name")
	}
	if v := os.Getenv(name); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w: environment variable %s not set", ErrSecretNotFound, name)
}
