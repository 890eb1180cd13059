package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/firedocs/internal/model"
)

// MarkdownWriter outputs reports in Markdown format for documentation and
// sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary of one run.
func (w *MarkdownWriter) Write(outcome *model.CrawlOutcome) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Firedocs Crawl Report")
	md.PlainText("")

	rows := [][]string{
		{"Start URL", outcome.Request.StartURL},
	}
	if outcome.Request.ScopeURL != "" {
		rows = append(rows, []string{"Scope URL", outcome.Request.ScopeURL})
	}
	rows = append(rows,
		[]string{"Output", "`" + outcome.OutputPath() + "`"},
		[]string{"Run ID", "`" + outcome.RunID + "`"},
		[]string{"Job ID", valueOr(outcome.JobID)},
		[]string{"Started", formatTime(outcome.StartedAt)},
		[]string{"Duration", formatDuration(outcome.Duration())},
		[]string{"Pages", strconv.Itoa(outcome.Pages)},
		[]string{"Skipped", strconv.Itoa(outcome.Skipped)},
		[]string{"Status", statusText(outcome.Status)},
	)
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeAlert(md, outcome)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeAlert writes an alert matching the run status.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, outcome *model.CrawlOutcome) {
	switch {
	case outcome.Status == model.OutcomeFailed:
		md.Cautionf("Crawl failed: %s", valueOr(outcome.Reason))
	case outcome.Status == model.OutcomeCancelled:
		md.Warningf("Crawl cancelled. %d page(s) written before cancellation were kept.", outcome.Pages)
	case outcome.Skipped > 0:
		md.Warningf("%d page(s) could not be written and were skipped.", outcome.Skipped)
	case outcome.Pages == 0:
		md.Note("The crawl completed without returning any page.")
	default:
		md.Tip("All pages were written.")
	}
	md.PlainText("")
}

// WriteHistory outputs past runs as a table followed by a status chart.
func (w *MarkdownWriter) WriteHistory(runs []*model.CrawlOutcome) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Crawl History")
	md.PlainText("")

	if len(runs) == 0 {
		md.PlainText("No crawls recorded.")
		md.PlainText("")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(runs))
	counts := make(map[model.OutcomeStatus]uint64)
	for i, run := range runs {
		counts[run.Status]++
		rows[i] = []string{
			formatTime(run.StartedAt),
			statusText(run.Status),
			strconv.Itoa(run.Pages),
			truncateString(run.Request.StartURL, 60),
			"`" + run.OutputPath() + "`",
			truncateString(valueOr(run.Reason), 60),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Started", "Status", "Pages", "URL", "Output", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Run Outcomes"),
		piechart.WithShowData(true),
	)
	for _, status := range []model.OutcomeStatus{model.OutcomeCompleted, model.OutcomeFailed, model.OutcomeCancelled} {
		if counts[status] > 0 {
			chart.LabelAndIntValue(status.String(), counts[status])
		}
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")

	return len(md.String()), md.Build()
}

// WriteDocSets outputs the documentation sets as a table.
func (w *MarkdownWriter) WriteDocSets(sets []model.DocSet) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Documentation")
	md.PlainText("")

	if len(sets) == 0 {
		md.PlainText("No documentation found.")
		md.PlainText("")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(sets))
	for i, set := range sets {
		rows[i] = []string{
			set.Name,
			"`" + set.Path + "`",
			strconv.Itoa(set.Files),
			formatTime(set.UpdatedAt),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Name", "Path", "Files", "Updated"},
		Rows:   rows,
	})
	md.PlainText("")

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by [firedocs](https://github.com/nao1215/firedocs)*")
}

func statusText(status model.OutcomeStatus) string {
	switch status {
	case model.OutcomeCompleted:
		return "✅ Completed"
	case model.OutcomeCancelled:
		return "⚠️ Cancelled"
	default:
		return "❌ Failed"
	}
}
