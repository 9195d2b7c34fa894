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

package cli

import (
	"github.com/spf13/cobra"
	"github.com/tombee/kmsat/internal/commands/run"
	"github.com/tombee/kmsat/internal/commands/secrets"
	"github.com/tombee/kmsat/internal/commands/shared"
	versioncmd "github.com/tombee/kmsat/internal/commands/version"
)

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root Cobra command for kmsat
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kmsat",
		Short: "kmsat - KnowBe4 KMSAT connector",
		Long: `kmsat runs the KnowBe4 KMSAT connector commands against the Reporting
and User Events APIs, the way a SOAR host invokes them.

Configure the API keys in a params file (--config), with KMSAT_API_KEY and
KMSAT_USER_EVENTS_API_KEY, or in the keychain with 'kmsat secrets set'.
Run 'kmsat test-module' to check the Reporting API key.`,
		SilenceUsage:  true, // Don't show usage on errors
		SilenceErrors: true, // We handle errors ourselves for proper exit codes
	}

	flags := shared.RegisterFlagPointers()

	cmd.PersistentFlags().BoolVarP(flags.Verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(flags.Quiet, "quiet", "q", false, "Suppress non-error output")
	cmd.PersistentFlags().BoolVar(flags.JSON, "json", false, "Output in JSON format")
	cmd.PersistentFlags().StringVar(flags.Config, "config", "", "Path to params file (default: ~/.config/kmsat/config.yaml)")
	cmd.PersistentFlags().StringVar(flags.EnvFile, "env-file", "", "Dotenv file loaded before KMSAT_* variables are read")
	cmd.PersistentFlags().StringVar(flags.MetricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this file after the run")

	return cmd
}

// NewApp returns the root command with every subcommand attached.
func NewApp() *cobra.Command {
	rootCmd := NewRootCommand()

	rootCmd.AddCommand(run.NewCommand())
	for _, c := range run.NewShortcutCommands() {
		rootCmd.AddCommand(c)
	}

	rootCmd.AddCommand(secrets.NewCommand())
	rootCmd.AddCommand(versioncmd.NewVersionCommand())

	rootCmd.SetHelpCommand(NewHelpCommand(rootCmd))

	return rootCmd
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return shared.GetVersion()
}

// HandleExitError handles exit errors with proper exit codes
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
