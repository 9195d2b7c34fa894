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
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/tombee/kmsat/internal/secrets"
)

// setup routes the keychain to an in-memory mock.
func setup(t *testing.T) {
	t.Helper()
	keyring.MockInit()
	t.Setenv("KMSAT_SECRET_REPORTING", "")
	t.Setenv("KMSAT_SECRET_USER_EVENTS", "")
}

func execSecrets(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNewCommand(t *testing.T) {
	cmd := NewCommand()
	assert.Equal(t, "secrets", cmd.Use)

	names := []string{}
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"set", "get", "list", "delete"}, names)
}

func TestSetGetDelete(t *testing.T) {
	setup(t)

	out, err := execSecrets(t, "reporting-secret-value\n", "set", ReportingKey)
	require.NoError(t, err)
	assert.Contains(t, out, `Secret "reporting" stored`)

	stored, err := keyring.Get(secrets.KeychainService, ReportingKey)
	require.NoError(t, err)
	assert.Equal(t, "reporting-secret-value", stored)

	out, err = execSecrets(t, "", "get", ReportingKey)
	require.NoError(t, err)
	assert.Contains(t, out, "repo...alue")
	assert.NotContains(t, out, "reporting-secret-value")

	out, err = execSecrets(t, "", "get", ReportingKey, "--unmask")
	require.NoError(t, err)
	assert.Equal(t, "reporting-secret-value\n", out)

	out, err = execSecrets(t, "", "delete", ReportingKey, "--force")
	require.NoError(t, err)
	assert.Contains(t, out, `Secret "reporting" deleted`)

	_, err = keyring.Get(secrets.KeychainService, ReportingKey)
	assert.ErrorIs(t, err, keyring.ErrNotFound)
}

func TestSet_EmptyValue(t *testing.T) {
	setup(t)

	_, err := execSecrets(t, "   \n", "set", UserEventsKey)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secret value cannot be empty")
}

func TestSet_InvalidKey(t *testing.T) {
	setup(t)

	_, err := execSecrets(t, "value", "set", "bad key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid secret key")
}

func TestGet_NotFound(t *testing.T) {
	setup(t)

	_, err := execSecrets(t, "", "get", UserEventsKey)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kmsat secrets set user-events")
}

func TestDelete_Canceled(t *testing.T) {
	setup(t)
	require.NoError(t, keyring.Set(secrets.KeychainService, ReportingKey, "value"))

	out, err := execSecrets(t, "n\n", "delete", ReportingKey)
	require.NoError(t, err)
	assert.Contains(t, out, "Deletion canceled")

	stored, err := keyring.Get(secrets.KeychainService, ReportingKey)
	require.NoError(t, err)
	assert.Equal(t, "value", stored)
}

func TestList(t *testing.T) {
	setup(t)
	require.NoError(t, keyring.Set(secrets.KeychainService, ReportingKey, "from-keychain"))
	t.Setenv("KMSAT_SECRET_USER_EVENTS", "from-env")

	out, err := execSecrets(t, "", "list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Regexp(t, `^reporting\s+keychain$`, lines[2])
	assert.Regexp(t, `^user-events\s+env$`, lines[3])
}

func TestList_NothingSet(t *testing.T) {
	setup(t)

	out, err := execSecrets(t, "", "list")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "(not set)"))
}

func TestSet_NoWritableBackend(t *testing.T) {
	setup(t)
	old := newResolver
	newResolver = func() *secrets.Resolver { return secrets.NewResolver(secrets.NewEnvBackend()) }
	defer func() { newResolver = old }()

	_, err := execSecrets(t, "value", "set", ReportingKey)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KMSAT_SECRET_REPORTING")
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "****", maskSecret("short"))
	assert.Equal(t, "abcd...6789", maskSecret("abcdef0123456789"))
}
