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

	"github.com/tombee/kmsat/internal/config"
	"github.com/tombee/kmsat/internal/integration/kmsat"
	pkgerrors "github.com/tombee/kmsat/pkg/errors"
)

// Error codes for structured JSON output
const (
	// Input errors (E300-E399)
	ErrorCodeInvalidInput = "E302" // Invalid argument or flag

	// Configuration errors (E200-E299)
	ErrorCodeConfigNotFound = "E201" // Params file missing or unreadable
	ErrorCodeInvalidConfig  = "E202" // Invalid configuration value
	ErrorCodeMissingAPIKey  = "E203" // Missing API key

	// Provider errors (E500-E599)
	ErrorCodeAPIError      = "E501" // Non-200 response
	ErrorCodeAuthFailed    = "E502" // API key rejected
	ErrorCodeUnreachable   = "E503" // No response from the API
	ErrorCodeEmptyResponse = "E504" // 200 with an empty or null body

	// Command errors (E400-E499)
	ErrorCodeNotImplemented  = "E404" // Unknown command
	ErrorCodeExecutionFailed = "E403" // Execution failed
)

// ErrorCode maps an error to its JSON error code.
func ErrorCode(err error) string {
	var cfgErr *pkgerrors.ConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Reason {
		case config.MissingReportingKeyMessage, config.MissingUserEventsKeyMessage:
			return ErrorCodeMissingAPIKey
		}
		if cfgErr.Key == "config_file" || cfgErr.Key == "env_file" {
			return ErrorCodeConfigNotFound
		}
		return ErrorCodeInvalidConfig
	}

	var classifier pkgerrors.ErrorClassifier
	if !errors.As(err, &classifier) {
		return ErrorCodeExecutionFailed
	}

	switch classifier.ErrorType() {
	case pkgerrors.TypeValidation:
		return ErrorCodeInvalidInput
	case pkgerrors.TypeNotImplemented:
		return ErrorCodeNotImplemented
	case pkgerrors.TypeTranslation:
		return ErrorCodeEmptyResponse
	case kmsat.TypeAuth:
		return ErrorCodeAuthFailed
	case kmsat.TypeConnectivity:
		return ErrorCodeUnreachable
	case kmsat.TypeAPI:
		return ErrorCodeAPIError
	default:
		return ErrorCodeExecutionFailed
	}
}
