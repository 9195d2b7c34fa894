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
	"encoding/json"
	"io"

	"github.com/tombee/kmsat/internal/operation"
	pkgerrors "github.com/tombee/kmsat/pkg/errors"
)

// JSONVersion is the envelope format version.
const JSONVersion = "1.0"

// JSONResponse is the base envelope for all JSON output
type JSONResponse struct {
	Version string `json:"@version"`
	Command string `json:"command"`
	Success bool   `json:"success"`
}

// JSONError represents a structured error with code, message and suggestion
type JSONError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// ResultResponse carries a command result in the host's shape.
type ResultResponse struct {
	JSONResponse
	OutputsPrefix   string          `json:"outputs_prefix,omitempty"`
	OutputsKeyField string          `json:"outputs_key_field"`
	RawResponse     json.RawMessage `json:"raw_response,omitempty"`
	ReadableOutput  string          `json:"readable_output"`

	// Filtered is the --jq result, when a filter was given.
	Filtered interface{} `json:"filtered,omitempty"`
}

// NewResultResponse builds the success envelope for result.
func NewResultResponse(command string, result *operation.Result) ResultResponse {
	return ResultResponse{
		JSONResponse: JSONResponse{
			Version: JSONVersion,
			Command: command,
			Success: true,
		},
		OutputsPrefix:   result.OutputsPrefix,
		OutputsKeyField: result.OutputsKeyField,
		RawResponse:     result.RawResponse,
		ReadableOutput:  result.ReadableOutput,
	}
}

// EmitJSON writes response as indented JSON to w.
func EmitJSON(w io.Writer, response interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(response)
}

// EmitJSONError writes a failure envelope for err.
func EmitJSONError(w io.Writer, command string, err error) error {
	type errorResponse struct {
		JSONResponse
		Errors []JSONError `json:"errors"`
	}

	resp := errorResponse{
		JSONResponse: JSONResponse{
			Version: JSONVersion,
			Command: command,
			Success: false,
		},
		Errors: []JSONError{{
			Code:       ErrorCode(err),
			Message:    pkgerrors.UserMessage(err),
			Suggestion: Suggestion(err),
		}},
	}

	return EmitJSON(w, resp)
}
