package format

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsTTY reports whether stdout should get terminal formatting.
func IsTTY() bool {
	return IsTerminal(os.Stdout)
}

// IsTerminal reports whether w is a color-capable terminal. Writers that
// are not *os.File (buffers, pipes wrapped by cobra) never are. NO_COLOR
// and TERM=dumb turn styling off regardless of the file descriptor.
func IsTerminal(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if t := os.Getenv("TERM"); t == "dumb" || t == "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
