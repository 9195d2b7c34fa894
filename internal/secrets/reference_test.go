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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsReference(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"env:KB4_KEY", true},
		{"${KB4_KEY}", true},
		{"keychain:reporting", true},
		{"eyJhbGciOiJIUzI1NiJ9.plain", false},
		{"${not valid}", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, IsReference(tt.value))
		})
	}
}

func TestResolveReference(t *testing.T) {
	t.Setenv("KB4_KEY", "env-value")

	kc := newMockBackend("keychain", KeychainBackendPriority)
	kc.secrets["reporting"] = "keychain-value"
	r := NewResolver(NewEnvBackend(), kc)
	ctx := context.Background()

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "literal", value: "literal-token", want: "literal-token"},
		{name: "env prefix", value: "env:KB4_KEY", want: "env-value"},
		{name: "legacy syntax", value: "${KB4_KEY}", want: "env-value"},
		{name: "keychain", value: "keychain:reporting", want: "keychain-value"},
		{name: "empty", value: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ResolveReference(ctx, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveReference_EnvOverridesKeychain(t *testing.T) {
	t.Setenv("KMSAT_SECRET_REPORTING", "override")

	kc := newMockBackend("keychain", KeychainBackendPriority)
	kc.secrets["reporting"] = "keychain-value"
	r := NewResolver(NewEnvBackend(), kc)

	got, err := r.ResolveReference(context.Background(), "keychain:reporting")
	require.NoError(t, err)
	assert.Equal(t, "override", got)
}

func TestResolveReference_Errors(t *testing.T) {
	r := NewResolver(newMockBackend("keychain", KeychainBackendPriority))
	ctx := context.Background()

	_, err := r.ResolveReference(ctx, "env:KMSAT_TEST_UNSET_VARIABLE")
	assert.True(t, errors.Is(err, ErrSecretNotFound))

	_, err = r.ResolveReference(ctx, "keychain:missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSecretNotFound))
	assert.Contains(t, err.Error(), "keychain:missing")

	_, err = r.ResolveReference(ctx, "keychain:")
	assert.Error(t, err)

	_, err = r.ResolveReference(ctx, "env:")
	assert.Error(t, err)
}
