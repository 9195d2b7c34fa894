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

// UserVisibleError defines errors that should be displayed to end users
// with user-friendly messages and actionable suggestions.
//
// Connector errors (kmsat.AuthorizationError, ConfigError, ...) implement
// this interface so the CLI and the host result surface can print the
// message without internal prefixes.
type UserVisibleError interface {
	error

	// IsUserVisible returns true if this error should be shown to users.
	IsUserVisible() bool

	// UserMessage returns a user-friendly error message.
	UserMessage() string

	// Suggestion returns actionable guidance for resolving the error.
	// Returns empty string if no suggestion is available.
	Suggestion() string
}

// ErrorClassifier defines methods for programmatic error handling.
// The CLI maps ErrorType to exit codes and JSON error codes.
type ErrorClassifier interface {
	error

	// ErrorType returns a string identifying the error category.
	// Examples: "validation", "config", "not_implemented", "translation"
	ErrorType() string

	// IsRetryable returns true if the operation could succeed if repeated.
	IsRetryable() bool
}

// UserMessage walks the error chain and returns the message of the first
// UserVisibleError found, or err.Error() when there is none.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var uv UserVisibleError
	if As(err, &uv) && uv.IsUserVisible() {
		return uv.UserMessage()
	}
	return err.Error()
}
