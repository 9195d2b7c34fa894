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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tombee/kmsat/internal/cli/format"
	"github.com/tombee/kmsat/internal/commands/shared"
	"github.com/tombee/kmsat/internal/config"
	"github.com/tombee/kmsat/internal/integration/kmsat"
	"github.com/tombee/kmsat/internal/jq"
	"github.com/tombee/kmsat/internal/log"
	"github.com/tombee/kmsat/internal/operation"
	"github.com/tombee/kmsat/internal/tracing"
	pkgerrors "github.com/tombee/kmsat/pkg/errors"
)

// shutdownTimeout bounds the final span flush.
const shutdownTimeout = 5 * time.Second

// execute loads configuration, dispatches inv and prints the result.
// In --json mode failures are written as an error envelope on stdout and
// the returned error only carries the exit code.
func execute(cmd *cobra.Command, inv kmsat.Invocation, out outputFlags) error {
	stdout := cmd.OutOrStdout()

	err := dispatch(cmd, inv, out)
	if err == nil || !shared.GetJSON() {
		return err
	}

	if emitErr := shared.EmitJSONError(stdout, inv.Command, err); emitErr != nil {
		return emitErr
	}
	return &shared.ExitError{Code: shared.ClassifyError(err).Code}
}

func dispatch(cmd *cobra.Command, inv kmsat.Invocation, out outputFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	executor := jq.NewExecutor(0, 0)
	if out.jq != "" {
		if err := executor.Validate(out.jq); err != nil {
			return &pkgerrors.ValidationError{Field: "jq", Message: err.Error()}
		}
	}

	params, err := config.Load(ctx, config.LoadOptions{
		Path:    shared.GetConfigPath(),
		EnvFile: shared.GetEnvFile(),
	})
	if err != nil {
		return err
	}

	logger := newLogger(params, cmd.ErrOrStderr())

	version, _, _ := shared.GetVersion()
	params.Tracing.ServiceVersion = version
	provider, err := tracing.Setup(ctx, params.Tracing)
	if err != nil {
		return shared.NewInvalidConfigError("failed to set up tracing", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown failed", log.Error(err))
		}
	}()

	metrics := operation.NewMetrics()
	defer writeMetrics(metrics, logger)

	dispatcher, err := kmsat.NewDispatcher(params, kmsat.Options{
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return err
	}

	isTTY := format.IsTerminal(cmd.OutOrStdout())
	spinner := shared.NewSpinner(cmd.ErrOrStderr(), isTTY && !shared.GetJSON() && !shared.GetQuiet())
	spinner.Start("Calling KMSAT")
	result, err := dispatcher.Dispatch(tracing.ToContext(ctx, tracing.NewCorrelationID()), inv)
	spinner.Stop()
	if err != nil {
		return err
	}

	return printResult(ctx, cmd.OutOrStdout(), inv.Command, result, out, executor, isTTY)
}

func printResult(ctx context.Context, w io.Writer, command string, result *operation.Result, out outputFlags, executor *jq.Executor, isTTY bool) error {
	var filtered interface{}
	if out.jq != "" {
		var err error
		filtered, err = executor.ExecuteJSON(ctx, out.jq, result.RawResponse)
		if err != nil {
			return shared.NewExecutionError("jq filter failed", err)
		}
	}

	if shared.GetJSON() {
		resp := shared.NewResultResponse(command, result)
		resp.Filtered = filtered
		return shared.EmitJSON(w, resp)
	}

	if shared.GetQuiet() {
		return nil
	}

	switch {
	case out.jq != "":
		data, err := json.Marshal(filtered)
		if err != nil {
			return fmt.Errorf("failed to encode jq output: %w", err)
		}
		return printJSON(w, string(data), isTTY)
	case out.raw && !result.IsPlainText():
		return printJSON(w, string(result.RawResponse), isTTY)
	case result.IsPlainText():
		fmt.Fprintln(w, shared.RenderOK(result.ReadableOutput))
		return nil
	}

	rendered, err := format.FormatMarkdown(result.ReadableOutput, isTTY)
	if err != nil {
		return err
	}
	fmt.Fprint(w, rendered)
	return nil
}

func printJSON(w io.Writer, content string, isTTY bool) error {
	pretty, err := format.FormatJSON(content)
	if err != nil {
		return err
	}
	highlighted, err := format.FormatCode(pretty, "json", isTTY)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, highlighted)
	return nil
}

// newLogger builds the run logger. Without an explicit level the CLI logs
// warnings only; --verbose and --quiet override everything else.
func newLogger(params *config.Params, w io.Writer) *slog.Logger {
	cfg := log.FromEnv()
	if os.Getenv("KMSAT_DEBUG") == "" && os.Getenv("KMSAT_LOG_LEVEL") == "" && os.Getenv("LOG_LEVEL") == "" {
		cfg.Level = "warn"
	}
	cfg.Merge(params.Log)
	cfg.Output = w
	cfg.Secrets = []string{params.APIKey.Password, params.UserEventsAPIKey.Password}

	switch {
	case shared.GetVerbose():
		cfg.Level = "debug"
	case shared.GetQuiet():
		cfg.Level = "error"
	}

	return log.New(cfg)
}

func writeMetrics(metrics *operation.Metrics, logger *slog.Logger) {
	path := shared.GetMetricsTextfile()
	if path == "" {
		return
	}
	if err := metrics.WriteTextfile(path); err != nil {
		logger.Warn("failed to write metrics textfile", slog.String("path", path), log.Error(err))
	}
}
