package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMarkdown(t *testing.T) {
	table := "### Account_Info\n|name|type|\n|---|---|\n| KB4-Demo | paid |\n"

	tests := []struct {
		name     string
		content  string
		isTTY    bool
		contains string
	}{
		{name: "table with TTY", content: table, isTTY: true, contains: "KB4-Demo"},
		{name: "table without TTY is unchanged", content: table, isTTY: false, contains: "|name|type|"},
		{name: "empty markdown", content: "", isTTY: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatMarkdown(tt.content, tt.isTTY)
			require.NoError(t, err)
			if !tt.isTTY {
				assert.Equal(t, tt.content, got)
			}
			if tt.contains != "" {
				assert.Contains(t, got, tt.contains)
			}
			assert.False(t, strings.Contains(got, "\x1b["), "ANSI escapes must be stripped")
		})
	}
}

func TestFormatMarkdown_SizeLimit(t *testing.T) {
	_, err := FormatMarkdown(strings.Repeat("a", maxMarkdownSize+1), false)
	require.Error(t, err)
}

func TestFormatJSON(t *testing.T) {
	got, err := FormatJSON(`{"current_risk_score":12.30,"data":[]}`)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"current_risk_score\": 12.30,\n  \"data\": []\n}", got)

	_, err = FormatJSON(`{not json`)
	require.Error(t, err)
}

func TestFormatCode(t *testing.T) {
	plain, err := FormatCode(`{"a":1}`, "json", false)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, plain)

	highlighted, err := FormatCode(`{"a":1}`, "json", true)
	require.NoError(t, err)
	assert.Contains(t, highlighted, "a")

	noLang, err := FormatCode("x", "", true)
	require.NoError(t, err)
	assert.Equal(t, "x", noLang)
}

func TestFormat(t *testing.T) {
	got, err := Format("ok", "string", true)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)

	got, err = Format(`[1,2]`, "json", false)
	require.NoError(t, err)
	assert.Equal(t, "[\n  1,\n  2\n]", got)

	_, err = Format("x", "yaml", false)
	require.Error(t, err)
}

func TestIsTTY_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, IsTTY())

	t.Setenv("NO_COLOR", "")
	t.Setenv("TERM", "dumb")
	assert.False(t, IsTTY())
}

func TestIsTerminal_NonFileWriter(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("TERM", "xterm-256color")
	assert.False(t, IsTerminal(&strings.Builder{}))
}
