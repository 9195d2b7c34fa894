// Package format provides CLI output formatting with TTY detection.
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"
)

const (
	maxJSONSize     = 10 * 1024 * 1024 // 10MB
	maxMarkdownSize = 5 * 1024 * 1024  // 5MB
	maxCodeSize     = 2 * 1024 * 1024  // 2MB
)

// ansiEscapeRegex matches ANSI escape sequences for sanitization.
var ansiEscapeRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// sanitizeANSI removes ANSI escape sequences from a string.
func sanitizeANSI(s string) string {
	return ansiEscapeRegex.ReplaceAllString(s, "")
}

// enforceSize checks if content exceeds the maximum size for its format.
func enforceSize(content string, format string, maxSize int) error {
	if len(content) > maxSize {
		return fmt.Errorf("output size (%d bytes) exceeds maximum for %s format (%d bytes)", len(content), format, maxSize)
	}
	return nil
}

// FormatMarkdown renders markdown tables and headings for a terminal.
// Returns content unchanged when isTTY is false or glamour fails.
func FormatMarkdown(content string, isTTY bool) (string, error) {
	if err := enforceSize(content, "markdown", maxMarkdownSize); err != nil {
		return "", err
	}

	if !isTTY {
		return content, nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return content, nil
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return content, nil
	}

	// Vendor strings flow into this output; escape sequences are never passed through
	return sanitizeANSI(rendered), nil
}

// FormatJSON pretty-prints JSON with 2-space indentation, preserving
// number literals exactly.
func FormatJSON(content string) (string, error) {
	if err := enforceSize(content, "json", maxJSONSize); err != nil {
		return "", err
	}

	if !json.Valid([]byte(content)) {
		return "", fmt.Errorf("invalid JSON")
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(content), "", "  "); err != nil {
		return "", fmt.Errorf("failed to format JSON: %w", err)
	}

	return buf.String(), nil
}

// FormatCode applies syntax highlighting for language if isTTY is true.
// Unknown languages and non-TTY output return content unchanged.
func FormatCode(content string, language string, isTTY bool) (string, error) {
	if err := enforceSize(content, "code", maxCodeSize); err != nil {
		return "", err
	}

	if !isTTY || language == "" {
		return content, nil
	}

	var buf bytes.Buffer
	if err := quick.Highlight(&buf, content, language, "terminal256", "monokai"); err != nil {
		return content, nil
	}

	return buf.String(), nil
}

// Format formats output content by type: "markdown", "json" or "string".
func Format(content string, format string, isTTY bool) (string, error) {
	switch strings.ToLower(format) {
	case "", "string":
		return content, nil
	case "markdown":
		return FormatMarkdown(content, isTTY)
	case "json":
		formatted, err := FormatJSON(content)
		if err != nil {
			return "", err
		}
		return FormatCode(formatted, "json", isTTY)
	default:
		return "", fmt.Errorf("unknown format: %s", format)
	}
}
