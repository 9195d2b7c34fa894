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
	"time"
)

// CommandRequest describes a dispatched command for logging purposes.
type CommandRequest struct {
	// Command is the host command name (e.g., "get-account-info").
	Command string

	// CorrelationID ties together every log line of one invocation.
	CorrelationID string

	// Args are the command arguments. Values are logged as given; the
	// dispatcher never receives credentials through Args.
	Args map[string]string
}

// CommandResponse describes the outcome of a dispatched command.
type CommandResponse struct {
	// Success indicates whether the command produced a result.
	Success bool

	// Error is the error message if the command failed.
	Error string

	// DurationMs is the duration of the command in milliseconds.
	DurationMs int64
}

// LogCommandRequest logs the start of a command at debug level.
func LogCommandRequest(logger *slog.Logger, req *CommandRequest) {
	attrs := []any{
		EventKey, "command_request",
		CommandKey, req.Command,
	}

	if req.CorrelationID != "" {
		attrs = append(attrs, "correlation_id", req.CorrelationID)
	}

	if len(req.Args) > 0 {
		attrs = append(attrs, "args", req.Args)
	}

	logger.Debug("command being called", attrs...)
}

// LogCommandResponse logs the outcome of a command. Failures log at error.
func LogCommandResponse(logger *slog.Logger, req *CommandRequest, resp *CommandResponse) {
	attrs := []any{
		EventKey, "command_response",
		CommandKey, req.Command,
		"success", resp.Success,
		DurationKey, resp.DurationMs,
	}

	if req.CorrelationID != "" {
		attrs = append(attrs, "correlation_id", req.CorrelationID)
	}

	if resp.Error != "" {
		attrs = append(attrs, "error", resp.Error)
	}

	level := slog.LevelDebug
	message := "command completed"

	if !resp.Success {
		level = slog.LevelError
		message = "command failed"
	}

	logger.Log(context.Background(), level, message, attrs...)
}

// CommandMiddleware wraps command execution with request/response logging.
type CommandMiddleware struct {
	logger *slog.Logger
}

// NewCommandMiddleware creates a new command logging middleware.
func NewCommandMiddleware(logger *slog.Logger) *CommandMiddleware {
	if logger == nil {
		logger = Discard()
	}
	return &CommandMiddleware{
		logger: logger,
	}
}

// Handler runs handler and logs the request and its outcome.
func (m *CommandMiddleware) Handler(req *CommandRequest, handler func() error) error {
	start := time.Now()

	LogCommandRequest(m.logger, req)

	err := handler()

	resp := &CommandResponse{
		Success:    err == nil,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		resp.Error = err.Error()
	}

	LogCommandResponse(m.logger, req, resp)

	return err
}
