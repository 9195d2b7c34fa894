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

package run

import (
	"github.com/spf13/cobra"
	"github.com/tombee/kmsat/internal/integration/kmsat"
)

// outputFlags are shared by run and the per-command shortcuts.
type outputFlags struct {
	jq  string
	raw bool
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.jq, "jq", "", "Apply a jq filter to the raw response")
	cmd.Flags().BoolVar(&o.raw, "raw", false, "Print the raw response instead of the table")
}

// NewCommand creates the run command
func NewCommand() *cobra.Command {
	var (
		argPairs []string
		argsJSON string
		out      outputFlags
	)

	cmd := &cobra.Command{
		Use:   "run <command>",
		Short: "Dispatch a connector command",
		Annotations: map[string]string{
			"group": "execution",
		},
		Long: `Run dispatches one connector command by name, the way the SOAR host does.

Commands:
  test-module                      Check that the Reporting API accepts the key
  get-account-info                 GET /v1/account
  get-account-risk-score-history   GET /v1/account/risk_score_history
  get-user-events                  GET /events (first page, 100 per page)

Arguments are passed as --arg key=value (repeatable) or as a JSON object
with --args-json <file> ('-' reads stdin). --arg wins over --args-json.

Configuration comes from the params file (--config), the KMSAT_* environment
variables and an optional dotenv file (--env-file).`,
		Example: `  kmsat run test-module
  kmsat run get-user-events --arg event_type=phishing --arg risk_level=10
  kmsat run get-account-info --jq '.current_risk_score'`,
		Args: cobra.ExactArgs(1),
		ValidArgs: kmsat.Commands(),
		RunE: func(cmd *cobra.Command, args []string) error {
			invArgs, err := parseArgs(argPairs, argsJSON)
			if err != nil {
				return err
			}
			return execute(cmd, kmsat.Invocation{Command: args[0], Args: invArgs}, out)
		},
	}

	cmd.Flags().StringArrayVarP(&argPairs, "arg", "a", nil, "Command argument in key=value format (repeatable)")
	cmd.Flags().StringVar(&argsJSON, "args-json", "", "JSON file with command arguments ('-' for stdin)")
	out.register(cmd)

	return cmd
}

// NewShortcutCommands returns one top-level command per connector command,
// so `kmsat get-user-events --event-type phishing` works without run.
func NewShortcutCommands() []*cobra.Command {
	return []*cobra.Command{
		newShortcut(kmsat.CommandTestModule, "Check that the Reporting API accepts the key"),
		newShortcut(kmsat.CommandGetAccountInfo, "Show account information"),
		newShortcut(kmsat.CommandGetAccountRiskScoreHistory, "Show the account risk score history"),
		newEventsShortcut(),
	}
}

func newShortcut(name, short string) *cobra.Command {
	var out outputFlags

	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Annotations: map[string]string{
			"group": "connector",
		},
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, kmsat.Invocation{Command: name}, out)
		},
	}
	out.register(cmd)

	return cmd
}

func newEventsShortcut() *cobra.Command {
	var out outputFlags
	filters := make(map[string]*string, len(kmsat.EventQueryArgs))

	cmd := &cobra.Command{
		Use:   kmsat.CommandGetUserEvents,
		Short: "List user events (first page, 100 per page)",
		Annotations: map[string]string{
			"group": "connector",
		},
		Example: `  kmsat get-user-events --event-type phishing --order-by occurred_date --order-direction desc`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			invArgs := map[string]string{}
			for _, name := range kmsat.EventQueryArgs {
				if cmd.Flags().Changed(flagName(name)) {
					invArgs[name] = *filters[name]
				}
			}
			return execute(cmd, kmsat.Invocation{Command: kmsat.CommandGetUserEvents, Args: invArgs}, out)
		},
	}

	for _, name := range kmsat.EventQueryArgs {
		filters[name] = cmd.Flags().String(flagName(name), "", "Filter by "+name)
	}
	out.register(cmd)

	return cmd
}
