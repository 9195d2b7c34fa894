package operation

import (
	"encoding/json"
)

// Result is the host-facing output of a successful command.
type Result struct {
	// OutputsPrefix is the context path the host stores the data under
	// (e.g., "KMSAT_User_Events_Returned"). Empty for plain-text results.
	OutputsPrefix string

	// OutputsKeyField names the field used to deduplicate entries.
	// Always empty for this connector.
	OutputsKeyField string

	// RawResponse is the vendor response body, unmodified.
	RawResponse json.RawMessage

	// ReadableOutput is the human-readable rendering (Markdown table or "ok").
	ReadableOutput string
}

// IsPlainText reports whether the result carries only a readable message,
// as test-module does.
func (r *Result) IsPlainText() bool {
	return r.OutputsPrefix == "" && len(r.RawResponse) == 0
}

// TextResult returns a plain-text result.
func TextResult(message string) *Result {
	return &Result{ReadableOutput: message}
}
