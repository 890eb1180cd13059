package ui

import (
	"os"

	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether v is an *os.File connected to a terminal.
func IsTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok || f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
