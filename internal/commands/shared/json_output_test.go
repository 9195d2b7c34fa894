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
	"bytes"
	"encoding/json"
	"testing"

	"github.com/tombee/kmsat/internal/integration/kmsat"
	"github.com/tombee/kmsat/internal/operation"
	pkgerrors "github.com/tombee/kmsat/pkg/errors"
)

func TestEmitJSON_Result(t *testing.T) {
	result := &operation.Result{
		OutputsPrefix:  "KMSAT_Account_Info_Returned",
		RawResponse:    json.RawMessage(`{"name":"KB4-Demo","current_risk_score":45.662}`),
		ReadableOutput: "### Account_Info\n|name|current_risk_score|\n|---|---|\n| KB4-Demo | 45.662 |\n",
	}

	var buf bytes.Buffer
	if err := EmitJSON(&buf, NewResultResponse("get-account-info", result)); err != nil {
		t.Fatalf("EmitJSON() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}

	checks := map[string]interface{}{
		"@version":          JSONVersion,
		"command":           "get-account-info",
		"success":           true,
		"outputs_prefix":    "KMSAT_Account_Info_Returned",
		"outputs_key_field": "",
	}
	for key, want := range checks {
		if decoded[key] != want {
			t.Errorf("%s = %v, want %v", key, decoded[key], want)
		}
	}

	raw, ok := decoded["raw_response"].(map[string]interface{})
	if !ok || raw["name"] != "KB4-Demo" {
		t.Errorf("raw_response = %v", decoded["raw_response"])
	}
	if _, ok := decoded["filtered"]; ok {
		t.Error("filtered should be omitted without --jq")
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"current_risk_score": 45.662`)) {
		t.Errorf("raw numbers should be preserved: %s", buf.String())
	}
}

func TestEmitJSON_PlainText(t *testing.T) {
	var buf bytes.Buffer
	if err := EmitJSON(&buf, NewResultResponse("test-module", operation.TextResult("ok"))); err != nil {
		t.Fatal(err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["readable_output"] != "ok" {
		t.Errorf("readable_output = %v", decoded["readable_output"])
	}
	if _, ok := decoded["raw_response"]; ok {
		t.Error("raw_response should be omitted for plain text results")
	}
}

func TestEmitJSONError(t *testing.T) {
	var buf bytes.Buffer
	err := &kmsat.CommandError{Command: "bogus", Err: &pkgerrors.NotImplementedError{Command: "bogus"}}

	if emitErr := EmitJSONError(&buf, "bogus", err); emitErr != nil {
		t.Fatal(emitErr)
	}

	var decoded struct {
		JSONResponse
		Errors []JSONError `json:"errors"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}

	if decoded.Success {
		t.Error("success should be false")
	}
	if len(decoded.Errors) != 1 {
		t.Fatalf("errors = %v", decoded.Errors)
	}
	got := decoded.Errors[0]
	if got.Code != ErrorCodeNotImplemented {
		t.Errorf("code = %q", got.Code)
	}
	if got.Message != "Failed to execute bogus command.\nError:\ncommand bogus is not implemented." {
		t.Errorf("message = %q", got.Message)
	}
	if got.Suggestion == "" {
		t.Error("expected a suggestion")
	}
}
