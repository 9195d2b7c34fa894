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

package errors

import (
	"fmt"
)

// Error type identifiers returned by ErrorType.
const (
	TypeValidation     = "validation"
	TypeConfig         = "config"
	TypeNotImplemented = "not_implemented"
	TypeTranslation    = "translation"
)

// ValidationError represents user input validation failures.
// Use this for malformed command arguments or flag values.
type ValidationError struct {
	// Field identifies which input field failed validation
	Field string

	// Message is the human-readable error description
	Message string

	// Hint provides actionable guidance for fixing the error
	Hint string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) IsUserVisible() bool { return true }
func (e *ValidationError) UserMessage() string { return e.Error() }
func (e *ValidationError) Suggestion() string  { return e.Hint }
func (e *ValidationError) ErrorType() string   { return TypeValidation }
func (e *ValidationError) IsRetryable() bool   { return false }

// ConfigError represents configuration problems such as a missing API key
// or an unparseable params file.
type ConfigError struct {
	// Key is the configuration key that has the problem (e.g., "apikey.password")
	Key string

	// Reason explains what's wrong with the configuration
	Reason string

	// Hint provides actionable guidance for resolution
	Hint string

	// Cause is the underlying error (e.g., file read error, parse error)
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config error at %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

func (e *ConfigError) IsUserVisible() bool { return true }

// UserMessage returns the bare reason, which is what the host shows.
func (e *ConfigError) UserMessage() string { return e.Reason }
func (e *ConfigError) Suggestion() string  { return e.Hint }
func (e *ConfigError) ErrorType() string   { return TypeConfig }
func (e *ConfigError) IsRetryable() bool   { return false }

// NotImplementedError is returned when a command name has no handler.
type NotImplementedError struct {
	// Command is the unrecognised command name
	Command string
}

// Error implements the error interface.
func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("command %s is not implemented.", e.Command)
}

func (e *NotImplementedError) IsUserVisible() bool { return true }
func (e *NotImplementedError) UserMessage() string { return e.Error() }
func (e *NotImplementedError) Suggestion() string {
	return "Run 'kmsat run --help' to list supported commands"
}
func (e *NotImplementedError) ErrorType() string { return TypeNotImplemented }
func (e *NotImplementedError) IsRetryable() bool { return false }

// TranslationError reports a successful API call whose body was absent or
// JSON null. An empty response is a failure, never an empty result.
type TranslationError struct {
	// Missing names what the response should have carried,
	// e.g. "`account_info`" or "user event `data`".
	Missing string
}

// Error implements the error interface.
func (e *TranslationError) Error() string {
	return fmt.Sprintf("Translation failed: the response from server did not include %s.", e.Missing)
}

func (e *TranslationError) IsUserVisible() bool { return true }
func (e *TranslationError) UserMessage() string { return e.Error() }
func (e *TranslationError) Suggestion() string  { return "" }
func (e *TranslationError) ErrorType() string   { return TypeTranslation }
func (e *TranslationError) IsRetryable() bool   { return false }
