package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/firedocs/internal/model"
)

var startedAt = time.Date(2026, 3, 14, 0, 26, 53, 0, time.UTC)

// createTestOutcome creates a completed run for testing.
func createTestOutcome() *model.CrawlOutcome {
	outcome := model.NewCrawlOutcome("run-1", model.CrawlRequest{
		StartURL:     "https://docs.example.com/guide/intro",
		ScopeURL:     "https://docs.example.com/guide",
		OutputFolder: "docs",
	}, startedAt)
	outcome.JobID = "job-1"
	outcome.DomainFolder = "docs_example_com"
	outcome.Pages = 12
	outcome.Status = model.OutcomeCompleted
	outcome.FinishedAt = startedAt.Add(90 * time.Second)
	return outcome
}

func createFailedOutcome() *model.CrawlOutcome {
	outcome := createTestOutcome()
	outcome.RunID = "run-2"
	outcome.Pages = 0
	outcome.Status = model.OutcomeFailed
	outcome.Reason = "invalid firecrawl API key, please configure it again"
	return outcome
}

func createDocSets() []model.DocSet {
	return []model.DocSet{
		{Name: "docs_example_com", Path: "docs/docs_example_com", Files: 12, UpdatedAt: startedAt},
		{Name: "go_dev", Path: "docs/go_dev", Files: 3, UpdatedAt: startedAt},
	}
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes run summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithColor(false))

		n, err := w.Write(createTestOutcome())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("returned %d bytes, wrote %d", n, buf.Len())
		}

		output := buf.String()
		for _, want := range []string{
			"FIREDOCS CRAWL",
			"Start URL:  https://docs.example.com/guide/intro",
			"Scope URL:  https://docs.example.com/guide",
			"Output:     docs/docs_example_com",
			"Pages:      12",
			"Duration:   1m30s",
			"Status:     Completed",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, output)
			}
		}
		if strings.Contains(output, "Job ID") {
			t.Error("job ID shown without verbose")
		}
		if strings.Contains(output, "Skipped") {
			t.Error("skipped line shown with no skipped pages")
		}
	})

	t.Run("verbose shows identifiers", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithColor(false), WithVerbose(true))
		if _, err := w.Write(createTestOutcome()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Job ID:     job-1") {
			t.Errorf("expected job ID, got:\n%s", buf.String())
		}
	})

	t.Run("writes failure reason and skipped pages", func(t *testing.T) {
		t.Parallel()

		outcome := createFailedOutcome()
		outcome.Skipped = 2

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithColor(false))
		if _, err := w.Write(outcome); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Status:     Failed - invalid firecrawl API key") {
			t.Errorf("expected failure status, got:\n%s", output)
		}
		if !strings.Contains(output, "Skipped:    2") {
			t.Errorf("expected skipped count, got:\n%s", output)
		}
	})

	t.Run("writes cancelled status", func(t *testing.T) {
		t.Parallel()

		outcome := createTestOutcome()
		outcome.Status = model.OutcomeCancelled

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithColor(false)).Write(outcome); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Cancelled (partial results kept)") {
			t.Errorf("expected cancelled status, got:\n%s", buf.String())
		}
	})

	t.Run("color adds escape sequences", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithColor(true)).Write(createTestOutcome()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\x1b[") {
			t.Error("expected ANSI escape sequences with color enabled")
		}
	})
}

func TestSimpleWriterHistory(t *testing.T) {
	t.Parallel()

	t.Run("one line per run", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithColor(false))
		if _, err := w.WriteHistory([]*model.CrawlOutcome{createTestOutcome(), createFailedOutcome()}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "CRAWL HISTORY") {
			t.Error("expected history header")
		}
		if !strings.Contains(output, "completed     12 pages  https://docs.example.com/guide/intro") {
			t.Errorf("expected completed run line, got:\n%s", output)
		}
		if !strings.Contains(output, "failed         0 pages") {
			t.Errorf("expected failed run line, got:\n%s", output)
		}
		if !strings.Contains(output, "invalid firecrawl API key") {
			t.Error("expected failure reason")
		}
	})

	t.Run("empty history", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithColor(false)).WriteHistory(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No crawls recorded") {
			t.Errorf("expected empty message, got:\n%s", buf.String())
		}
	})
}

func TestSimpleWriterDocSets(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewSimpleWriter(&buf, WithColor(false))
	if _, err := w.WriteDocSets(createDocSets()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "[+] docs/docs_example_com") || !strings.Contains(output, "12 files") {
		t.Errorf("expected doc set line, got:\n%s", output)
	}
	if !strings.Contains(output, "[+] docs/go_dev") {
		t.Errorf("expected second doc set, got:\n%s", output)
	}

	buf.Reset()
	if _, err := w.WriteDocSets(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "No documentation found") {
		t.Errorf("expected empty message, got:\n%s", buf.String())
	}
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes run table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestOutcome()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# Firedocs Crawl Report",
			"| Property",
			"https://docs.example.com/guide/intro",
			"`docs/docs_example_com`",
			"✅ Completed",
			"[!TIP]",
			"firedocs",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("failed run gets a caution alert", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createFailedOutcome()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "[!CAUTION]") || !strings.Contains(output, "invalid firecrawl API key") {
			t.Errorf("expected caution alert, got:\n%s", output)
		}
	})

	t.Run("cancelled run gets a warning alert", func(t *testing.T) {
		t.Parallel()

		outcome := createTestOutcome()
		outcome.Status = model.OutcomeCancelled

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(outcome); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "[!WARNING]") {
			t.Errorf("expected warning alert, got:\n%s", buf.String())
		}
	})

	t.Run("writes history with chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		runs := []*model.CrawlOutcome{createTestOutcome(), createFailedOutcome()}
		if _, err := NewMarkdownWriter(&buf).WriteHistory(runs); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"# Crawl History", "❌ Failed", "```mermaid", "Run Outcomes"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("writes doc sets", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteDocSets(createDocSets()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "# Documentation") || !strings.Contains(output, "`docs/go_dev`") {
			t.Errorf("unexpected output:\n%s", output)
		}
	})

	t.Run("empty inputs", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		if _, err := w.WriteHistory(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := w.WriteDocSets(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "No crawls recorded.") || !strings.Contains(output, "No documentation found.") {
			t.Errorf("unexpected output:\n%s", output)
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes run", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createFailedOutcome()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got map[string]any
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got["status"] != "failed" || got["run_id"] != "run-2" {
			t.Errorf("unexpected JSON: %s", buf.String())
		}
		if !strings.HasSuffix(buf.String(), "}\n") {
			t.Error("expected trailing newline")
		}
	})

	t.Run("version wrapper", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithVersion("v1.2.3")).Write(createTestOutcome()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got JSONReport
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.Version != "v1.2.3" || got.Run == nil || got.Run.Pages != 12 {
			t.Errorf("unexpected report: %+v", got)
		}
	})

	t.Run("empty lists encode as arrays", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)
		if _, err := w.WriteHistory(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := w.WriteDocSets(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.String() != "[]\n[]\n" {
			t.Errorf("got %q, want two empty arrays", buf.String())
		}
	})

	t.Run("pretty print", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).WriteDocSets(createDocSets()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  {\n    \"name\": \"docs_example_com\"") {
			t.Errorf("expected indented output, got:\n%s", buf.String())
		}
	})
}

type failingWriter struct{}

func (failingWriter) Write(*model.CrawlOutcome) (int, error)       { return 0, errors.New("boom") }
func (failingWriter) WriteHistory([]*model.CrawlOutcome) (int, error) { return 0, errors.New("boom") }
func (failingWriter) WriteDocSets([]model.DocSet) (int, error)      { return 0, errors.New("boom") }

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var text, js bytes.Buffer
		m := NewMultiWriter(NewSimpleWriter(&text, WithColor(false)), NewJSONWriter(&js))

		n, err := m.Write(createTestOutcome())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != text.Len()+js.Len() {
			t.Errorf("returned %d bytes, want %d", n, text.Len()+js.Len())
		}
		if text.Len() == 0 || js.Len() == 0 {
			t.Error("expected both writers to receive output")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var after bytes.Buffer
		m := NewMultiWriter(failingWriter{}, NewJSONWriter(&after))
		if _, err := m.WriteDocSets(createDocSets()); err == nil {
			t.Fatal("expected error")
		}
		if _, err := m.WriteHistory(nil); err == nil {
			t.Fatal("expected error")
		}
		if after.Len() != 0 {
			t.Error("writer after the failing one was called")
		}
	})
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world", 8, "hello..."},
		{"tiny limit", "hello", 2, "he"},
		{"multibyte", "ドキュメント一覧", 5, "ドキ..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := truncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "-"},
		{1500 * time.Microsecond, "2ms"},
		{90 * time.Second, "1m30s"},
		{2345 * time.Millisecond, "2.3s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
