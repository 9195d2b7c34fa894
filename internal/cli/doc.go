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

/*
Package cli provides the root command and shared configuration for the kmsat CLI.

This package creates the main Cobra command tree and handles global concerns like
version information, persistent flags, and error handling. Individual commands
are implemented in the internal/commands subpackages.

# Command Tree

The CLI is organized as:

	kmsat
	├── run <command>                    Dispatch a connector command by name
	├── test-module                      Check the Reporting API key
	├── get-account-info                 Account information
	├── get-account-risk-score-history   Account risk score history
	├── get-user-events                  User events (first page)
	├── secrets                          Keychain-stored API keys
	├── version                          Show version
	└── help                             Show help

# Usage

From main.go:

	cli.SetVersion(version, commit, date)
	rootCmd := cli.NewApp()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
	    cli.HandleExitError(err)
	}

# Global Flags

All commands inherit these flags:

	--verbose, -v         Enable debug logging
	--quiet, -q           Suppress non-error output
	--json                Output in JSON format
	--config              Path to the params file
	--env-file            Dotenv file loaded before KMSAT_* variables are read
	--metrics-textfile    Write Prometheus metrics here after the run

# Exit Codes

	0  success
	1  execution failed
	2  invalid configuration (missing API key, bad URL)
	3  invalid input (malformed --arg, bad jq filter)
	4  KMSAT API error (non-200, rejected key, unreachable)
	5  unknown command
*/
package cli
