package logging

import (
	"io"

	"github.com/mattn/go-isatty"
)

type fdWriter interface {
	Fd() uintptr
}

// IsTerminal reports whether w is attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(fdWriter)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// TerminalWidth returns the column count of the terminal behind w, or 0 when
// w is not a terminal or the size is unknown.
func TerminalWidth(w io.Writer) int {
	if !IsTerminal(w) {
		return 0
	}
	return terminalColumns(w.(fdWriter).Fd())
}

// ResolveColour decides whether output to w is coloured under mode.
func ResolveColour(mode ColourMode, w io.Writer) bool {
	switch mode {
	case ColourAlways:
		return true
	case ColourNever:
		return false
	default:
		return IsTerminal(w)
	}
}
