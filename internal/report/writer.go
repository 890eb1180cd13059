package report

import (
	"io"
	"time"

	"github.com/nao1215/firedocs/internal/model"
)

// Writer renders crawl results.
// Every method returns the number of bytes written.
type Writer interface {
	// Write outputs the summary of one finished run.
	Write(outcome *model.CrawlOutcome) (int, error)

	// WriteHistory outputs past runs, newest first.
	WriteHistory(runs []*model.CrawlOutcome) (int, error)

	// WriteDocSets outputs the documentation sets in the docs folder.
	WriteDocSets(sets []model.DocSet) (int, error)
}

// MultiWriter writes to multiple Writers in order and stops on the first
// error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the run summary to all Writers.
func (m *MultiWriter) Write(outcome *model.CrawlOutcome) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.Write(outcome) })
}

// WriteHistory outputs the history to all Writers.
func (m *MultiWriter) WriteHistory(runs []*model.CrawlOutcome) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteHistory(runs) })
}

// WriteDocSets outputs the documentation sets to all Writers.
func (m *MultiWriter) WriteDocSets(sets []model.DocSet) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteDocSets(sets) })
}

func (m *MultiWriter) each(fn func(Writer) (int, error)) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := fn(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

const timeLayout = "2006-01-02 15:04:05 MST"

// formatTime formats t in the local zone, or "-" for the zero time.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

// formatDuration rounds d for display.
func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

// valueOr returns s, or "-" when s is empty.
func valueOr(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncateString truncates a string to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
