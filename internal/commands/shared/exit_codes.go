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

package shared

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tombee/kmsat/internal/integration/kmsat"
	pkgerrors "github.com/tombee/kmsat/pkg/errors"
)

// Exit codes for kmsat commands
const (
	ExitSuccess         = 0
	ExitExecutionFailed = 1
	ExitInvalidConfig   = 2
	ExitInvalidInput    = 3
	ExitProviderError   = 4
	ExitNotImplemented  = 5
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	switch {
	case e.Message != "" && e.Cause != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	case e.Cause != nil:
		return e.Cause.Error()
	default:
		return e.Message
	}
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewExecutionError creates an error for command failures
func NewExecutionError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitExecutionFailed, Message: msg, Cause: cause}
}

// NewInvalidConfigError creates an error for unusable configuration
func NewInvalidConfigError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitInvalidConfig, Message: msg, Cause: cause}
}

// NewInvalidInputError creates an error for malformed arguments or flags
func NewInvalidInputError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitInvalidInput, Message: msg, Cause: cause}
}

// NewProviderError creates an error for failures reported by the KMSAT APIs
func NewProviderError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitProviderError, Message: msg, Cause: cause}
}

// ClassifyError wraps err in an ExitError chosen from its error type.
// Errors that already carry an exit code are returned unchanged.
func ClassifyError(err error) *ExitError {
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}

	code := ExitExecutionFailed
	var classifier pkgerrors.ErrorClassifier
	if errors.As(err, &classifier) {
		switch classifier.ErrorType() {
		case pkgerrors.TypeConfig:
			code = ExitInvalidConfig
		case pkgerrors.TypeValidation:
			code = ExitInvalidInput
		case pkgerrors.TypeNotImplemented:
			code = ExitNotImplemented
		case kmsat.TypeAPI, kmsat.TypeAuth, kmsat.TypeConnectivity:
			code = ExitProviderError
		}
	}

	return &ExitError{Code: code, Cause: err}
}

// ReportError prints err and any suggestion to w and returns the exit code.
func ReportError(w io.Writer, err error) int {
	if err == nil {
		return ExitSuccess
	}

	exitErr := ClassifyError(err)

	msg := pkgerrors.UserMessage(err)
	if exitErr.Message != "" {
		msg = exitErr.Error()
	}
	if msg != "" {
		fmt.Fprintln(w, RenderError("Error: "+msg))
	}

	if suggestion := Suggestion(err); suggestion != "" {
		fmt.Fprintf(w, "\nSuggestion: %s\n", suggestion)
	}

	return exitErr.Code
}

// HandleExitError reports err on stderr and exits with its code.
func HandleExitError(err error) {
	if err == nil {
		return
	}
	os.Exit(ReportError(os.Stderr, err))
}

// Suggestion returns the suggestion of the first UserVisibleError in the
// chain, or "".
func Suggestion(err error) string {
	var userErr pkgerrors.UserVisibleError
	if errors.As(err, &userErr) && userErr.IsUserVisible() {
		return userErr.Suggestion()
	}
	return ""
}
