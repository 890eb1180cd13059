package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/firedocs/internal/model"
)

// JSONWriter outputs reports in JSON format for tool integration.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string

	// version, when set, wraps single-run output in a JSONReport.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion wraps single-run output with the firedocs version.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONReport is a single run with the version of the tool that produced it.
type JSONReport struct {
	Version string              `json:"version"`
	Run     *model.CrawlOutcome `json:"run"`
}

// Write outputs the run as JSON.
func (w *JSONWriter) Write(outcome *model.CrawlOutcome) (int, error) {
	if w.version != "" {
		return w.writeJSON(JSONReport{Version: w.version, Run: outcome})
	}
	return w.writeJSON(outcome)
}

// WriteHistory outputs the runs as a JSON array.
func (w *JSONWriter) WriteHistory(runs []*model.CrawlOutcome) (int, error) {
	if runs == nil {
		runs = []*model.CrawlOutcome{}
	}
	return w.writeJSON(runs)
}

// WriteDocSets outputs the documentation sets as a JSON array.
func (w *JSONWriter) WriteDocSets(sets []model.DocSet) (int, error) {
	if sets == nil {
		sets = []model.DocSet{}
	}
	return w.writeJSON(sets)
}

// writeJSON marshals v and writes it followed by a newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
