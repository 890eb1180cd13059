package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Notifier prints one-line user notifications.
type Notifier struct {
	out  io.Writer
	info *color.Color
	warn *color.Color
	err  *color.Color
}

// NewNotifier creates a Notifier. Messages are colored only when out is a
// terminal.
func NewNotifier(out io.Writer) *Notifier {
	n := &Notifier{
		out:  out,
		info: color.New(color.FgCyan),
		warn: color.New(color.FgYellow),
		err:  color.New(color.FgRed, color.Bold),
	}
	if !IsTerminal(out) {
		for _, c := range []*color.Color{n.info, n.warn, n.err} {
			c.DisableColor()
		}
	}
	return n
}

// Info prints an informational message.
func (n *Notifier) Info(format string, args ...any) {
	n.print(n.info, "info", format, args...)
}

// Warn prints a warning.
func (n *Notifier) Warn(format string, args ...any) {
	n.print(n.warn, "warning", format, args...)
}

// Error prints an error message.
func (n *Notifier) Error(format string, args ...any) {
	n.print(n.err, "error", format, args...)
}

func (n *Notifier) print(c *color.Color, label, format string, args ...any) {
	fmt.Fprintf(n.out, "%s %s\n", c.Sprint(label+":"), fmt.Sprintf(format, args...))
}
