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
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("expected valid JSON output: %v", err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLogCommandRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "debug", Format: FormatJSON, Output: &buf})

	LogCommandRequest(logger, &CommandRequest{
		Command:       "get-user-events",
		CorrelationID: "correlation-123",
		Args:          map[string]string{"event_type": "phishing"},
	})

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	entry := entries[0]

	if entry["msg"] != "command being called" {
		t.Errorf("unexpected msg: %v", entry["msg"])
	}
	if entry["event"] != "command_request" {
		t.Errorf("expected event 'command_request', got: %v", entry["event"])
	}
	if entry["command"] != "get-user-events" {
		t.Errorf("expected command 'get-user-events', got: %v", entry["command"])
	}
	if entry["correlation_id"] != "correlation-123" {
		t.Errorf("expected correlation_id, got: %v", entry["correlation_id"])
	}
	args, ok := entry["args"].(map[string]interface{})
	if !ok || args["event_type"] != "phishing" {
		t.Errorf("expected args to be logged, got: %v", entry["args"])
	}
}

func TestLogCommandRequest_FilteredAtInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "info", Format: FormatJSON, Output: &buf})

	LogCommandRequest(logger, &CommandRequest{Command: "test-module"})

	if buf.Len() != 0 {
		t.Errorf("expected no output at info level, got: %s", buf.String())
	}
}

func TestCommandMiddleware_Handler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var buf bytes.Buffer
		m := NewCommandMiddleware(New(&Config{Level: "debug", Format: FormatJSON, Output: &buf}))

		called := false
		err := m.Handler(&CommandRequest{Command: "test-module"}, func() error {
			called = true
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !called {
			t.Fatal("handler was not called")
		}

		entries := decodeLines(t, &buf)
		if len(entries) != 2 {
			t.Fatalf("expected 2 log entries, got %d", len(entries))
		}
		if entries[1]["msg"] != "command completed" || entries[1]["success"] != true {
			t.Errorf("unexpected response entry: %v", entries[1])
		}
		if _, ok := entries[1]["duration_ms"]; !ok {
			t.Error("expected duration_ms field")
		}
	})

	t.Run("failure logs at error and returns the error", func(t *testing.T) {
		var buf bytes.Buffer
		m := NewCommandMiddleware(New(&Config{Level: "error", Format: FormatJSON, Output: &buf}))

		want := errors.New("Error in API call [500] - Internal Server Error")
		err := m.Handler(&CommandRequest{Command: "get-account-info"}, func() error {
			return want
		})
		if err != want {
			t.Fatalf("expected handler error to be returned, got: %v", err)
		}

		entries := decodeLines(t, &buf)
		if len(entries) != 1 {
			t.Fatalf("expected only the failure entry, got %d", len(entries))
		}
		if entries[0]["msg"] != "command failed" || entries[0]["level"] != "ERROR" {
			t.Errorf("unexpected failure entry: %v", entries[0])
		}
		if entries[0]["error"] != want.Error() {
			t.Errorf("expected error field, got: %v", entries[0]["error"])
		}
	})

	t.Run("nil logger", func(t *testing.T) {
		m := NewCommandMiddleware(nil)
		if err := m.Handler(&CommandRequest{Command: "x"}, func() error { return nil }); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
