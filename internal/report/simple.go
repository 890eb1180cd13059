package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/nao1215/firedocs/internal/model"
)

const ruleWidth = 70

// SimpleWriter outputs human-readable text for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose adds run and job identifiers to the output.
	verbose bool

	ok   *color.Color
	bad  *color.Color
	warn *color.Color
	head *color.Color
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithColor forces colored output on or off. By default color follows
// color.NoColor, which is set when stdout is not a terminal.
func WithColor(enabled bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		for _, c := range []*color.Color{w.ok, w.bad, w.warn, w.head} {
			if enabled {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
		}
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		ok:         color.New(color.FgGreen),
		bad:        color.New(color.FgRed),
		warn:       color.New(color.FgYellow),
		head:       color.New(color.FgCyan, color.Bold),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary of one run.
func (w *SimpleWriter) Write(outcome *model.CrawlOutcome) (int, error) {
	var sb strings.Builder

	w.writeTitle(&sb, "FIREDOCS CRAWL")

	fmt.Fprintf(&sb, "Start URL:  %s\n", outcome.Request.StartURL)
	if outcome.Request.ScopeURL != "" {
		fmt.Fprintf(&sb, "Scope URL:  %s\n", outcome.Request.ScopeURL)
	}
	fmt.Fprintf(&sb, "Output:     %s\n", outcome.OutputPath())
	if w.verbose {
		fmt.Fprintf(&sb, "Run ID:     %s\n", outcome.RunID)
		fmt.Fprintf(&sb, "Job ID:     %s\n", valueOr(outcome.JobID))
	}
	fmt.Fprintf(&sb, "Started:    %s\n", formatTime(outcome.StartedAt))
	fmt.Fprintf(&sb, "Duration:   %s\n", formatDuration(outcome.Duration()))
	fmt.Fprintf(&sb, "Pages:      %d\n", outcome.Pages)
	if outcome.Skipped > 0 {
		fmt.Fprintf(&sb, "Skipped:    %s\n", w.warn.Sprintf("%d (write failed, see log)", outcome.Skipped))
	}
	fmt.Fprintf(&sb, "Status:     %s\n", w.status(outcome))

	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

// WriteHistory outputs one line per run.
func (w *SimpleWriter) WriteHistory(runs []*model.CrawlOutcome) (int, error) {
	var sb strings.Builder

	w.writeTitle(&sb, "CRAWL HISTORY")

	if len(runs) == 0 {
		sb.WriteString("  No crawls recorded\n")
		return io.WriteString(w.output, sb.String())
	}

	for _, run := range runs {
		fmt.Fprintf(&sb, "  %s  %s  %5d pages  %s\n",
			formatTime(run.StartedAt),
			w.statusWord(run.Status),
			run.Pages,
			run.Request.StartURL,
		)
		if w.verbose {
			fmt.Fprintf(&sb, "      run %s  job %s  -> %s\n", run.RunID, valueOr(run.JobID), run.OutputPath())
		}
		if run.Status == model.OutcomeFailed && run.Reason != "" {
			fmt.Fprintf(&sb, "      %s\n", truncateString(run.Reason, ruleWidth-6))
		}
	}
	return io.WriteString(w.output, sb.String())
}

// WriteDocSets outputs one line per documentation set.
func (w *SimpleWriter) WriteDocSets(sets []model.DocSet) (int, error) {
	var sb strings.Builder

	w.writeTitle(&sb, "DOCUMENTATION")

	if len(sets) == 0 {
		sb.WriteString("  No documentation found\n")
		return io.WriteString(w.output, sb.String())
	}

	for _, set := range sets {
		fmt.Fprintf(&sb, "  [+] %-40s %5d files  %s\n", set.Path, set.Files, formatTime(set.UpdatedAt))
	}
	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeTitle(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(w.head.Sprint(title))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")
}

// status returns the colored status line of a run.
func (w *SimpleWriter) status(outcome *model.CrawlOutcome) string {
	switch outcome.Status {
	case model.OutcomeCompleted:
		return w.ok.Sprint("Completed")
	case model.OutcomeCancelled:
		return w.warn.Sprint("Cancelled (partial results kept)")
	default:
		return w.bad.Sprint("Failed - " + valueOr(outcome.Reason))
	}
}

// statusWord returns the padded, colored status of a history line.
func (w *SimpleWriter) statusWord(status model.OutcomeStatus) string {
	word := fmt.Sprintf("%-9s", status.String())
	switch status {
	case model.OutcomeCompleted:
		return w.ok.Sprint(word)
	case model.OutcomeCancelled:
		return w.warn.Sprint(word)
	default:
		return w.bad.Sprint(word)
	}
}
