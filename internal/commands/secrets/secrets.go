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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tombee/kmsat/internal/commands/shared"
	"github.com/tombee/kmsat/internal/secrets"
	pkgerrors "github.com/tombee/kmsat/pkg/errors"
)

// Well-known secret keys for the two API keys.
const (
	ReportingKey  = "reporting"
	UserEventsKey = "user-events"
)

// newResolver is replaced in tests.
var newResolver = secrets.NewDefaultResolver

// NewCommand creates the secrets command for API key management.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Manage stored API keys",
		Annotations: map[string]string{
			"group": "configuration",
		},
		Long: `Manage the KMSAT API keys outside the params file.

Secrets are resolved from two backends, highest priority first:
  1. Environment variables KMSAT_SECRET_<KEY> (read-only)
  2. System keychain (macOS Keychain, Linux Secret Service, Windows Credential Manager)

Reference a stored key from the params file with keychain:<key>:

  apikey:
    password: keychain:reporting
  userEventsApiKey:
    password: keychain:user-events

Commands:
  set       Store a key in the keychain
  get       Show a key (masked)
  list      Show which well-known keys resolve, and from where
  delete    Remove a key from the keychain`,
	}

	cmd.AddCommand(newSetCommand())
	cmd.AddCommand(newGetCommand())
	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newDeleteCommand())

	return cmd
}

func newSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key>",
		Short: "Store a key in the keychain",
		Long: `Store a key in the first writable backend.

The value is read from standard input when it is piped, otherwise from a
hidden prompt.

Examples:
  kmsat secrets set reporting
  echo "$KEY" | kmsat secrets set user-events`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if err := validateSecretKey(key); err != nil {
				return err
			}

			value, err := readSecretValue(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("failed to read secret value: %w", err)
			}
			if value == "" {
				return &pkgerrors.ValidationError{Field: "value", Message: "secret value cannot be empty"}
			}

			if err := newResolver().Set(ctxOf(cmd), key, value); err != nil {
				if errors.Is(err, secrets.ErrBackendUnavailable) {
					return shared.NewExecutionError("no writable secret backend",
						fmt.Errorf("%w\n\nSet the environment variable instead: export %s=<value>", err, secrets.EnvVarName(key)))
				}
				return fmt.Errorf("failed to set secret: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK(fmt.Sprintf("Secret %q stored", key)))
			return nil
		},
	}
}

func newGetCommand() *cobra.Command {
	var unmask bool

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Show a key (masked)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value, err := newResolver().Get(ctxOf(cmd), key)
			if err != nil {
				if errors.Is(err, secrets.ErrSecretNotFound) {
					return fmt.Errorf("secret not found: %q\n\nSet it with: kmsat secrets set %s", key, key)
				}
				return fmt.Errorf("failed to get secret: %w", err)
			}

			if unmask {
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (use --unmask to show full value)\n", maskSecret(value))
			return nil
		},
	}

	cmd.Flags().BoolVar(&unmask, "unmask", false, "Show full value (not masked)")

	return cmd
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show which well-known keys resolve, and from where",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver := newResolver()
			ctx := ctxOf(cmd)
			w := cmd.OutOrStdout()

			fmt.Fprintf(w, "%-15s %s\n", "KEY", "BACKEND")
			fmt.Fprintln(w, strings.Repeat("-", 30))
			for _, key := range []string{ReportingKey, UserEventsKey} {
				fmt.Fprintf(w, "%-15s %s\n", key, sourceOf(ctx, resolver, key))
			}
			return nil
		},
	}
}

func newDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove a key from the keychain",
		Long: `Remove a key from every writable backend.

Requires confirmation unless --force is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			w := cmd.OutOrStdout()

			if !force {
				fmt.Fprintf(w, "Are you sure you want to delete secret %q? [y/N]: ", key)
				response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				response = strings.ToLower(strings.TrimSpace(response))
				if response != "y" && response != "yes" {
					fmt.Fprintln(w, "Deletion canceled")
					return nil
				}
			}

			if err := newResolver().Delete(ctxOf(cmd), key); err != nil {
				if errors.Is(err, secrets.ErrSecretNotFound) {
					return fmt.Errorf("secret not found: %q", key)
				}
				return fmt.Errorf("failed to delete secret: %w", err)
			}

			fmt.Fprintln(w, shared.RenderOK(fmt.Sprintf("Secret %q deleted", key)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")

	return cmd
}

// sourceOf names the backend that serves key, or "(not set)".
func sourceOf(ctx context.Context, resolver *secrets.Resolver, key string) string {
	for _, b := range resolver.Backends() {
		if _, err := b.Get(ctx, key); err == nil {
			return b.Name()
		}
	}
	return "(not set)"
}

// readSecretValue reads a piped value, or prompts with hidden input when in
// is a terminal.
func readSecretValue(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Enter secret value (hidden): ")
		password, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		return string(password), nil
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// maskSecret masks a secret value for display.
func maskSecret(value string) string {
	if len(value) <= 8 {
		return "****"
	}
	return value[:4] + "..." + value[len(value)-4:]
}

// validateSecretKey validates a secret key format.
func validateSecretKey(key string) error {
	if key == "" {
		return &pkgerrors.ValidationError{Field: "key", Message: "secret key cannot be empty"}
	}
	if strings.ContainsAny(key, " \\") {
		return &pkgerrors.ValidationError{
			Field:   "key",
			Message: fmt.Sprintf("invalid secret key %q", key),
			Hint:    "Use names like reporting or user-events, without spaces or backslashes",
		}
	}
	return nil
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
