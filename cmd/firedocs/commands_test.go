package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/firedocs/internal/model"
	"github.com/nao1215/firedocs/internal/report"
	"github.com/nao1215/firedocs/internal/store"
	"github.com/nao1215/firedocs/internal/ui"
)

const testAPIKey = "fc-test-key"

// testEnv is an isolated workspace, state directory and settings file.
type testEnv struct {
	workspace string
	dataDir   string
	config    string
	apiURL    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	env := &testEnv{
		workspace: filepath.Join(dir, "workspace"),
		dataDir:   filepath.Join(dir, "data"),
		config:    filepath.Join(dir, "firedocs.yaml"),
		apiURL:    "http://127.0.0.1:1",
	}
	if err := os.MkdirAll(env.workspace, 0750); err != nil {
		t.Fatalf("failed to create workspace: %v", err)
	}
	settings := "settings:\n  transport: poll\n  pollInterval: \"10ms\"\n"
	if err := os.WriteFile(env.config, []byte(settings), 0600); err != nil {
		t.Fatalf("failed to write settings: %v", err)
	}
	return env
}

// seedCredential stores apiKey in the environment's state database.
func (e *testEnv) seedCredential(t *testing.T, apiKey string) {
	t.Helper()

	db, err := store.Open(e.dataDir, store.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer db.Close()
	if err := db.SetCredential(context.Background(), apiKey); err != nil {
		t.Fatalf("failed to seed credential: %v", err)
	}
}

// credential returns the stored API key.
func (e *testEnv) credential(t *testing.T) string {
	t.Helper()

	db, err := store.Open(e.dataDir, store.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer db.Close()
	key, err := db.Credential(context.Background())
	if err != nil {
		t.Fatalf("failed to read credential: %v", err)
	}
	return key
}

// run executes the root command with the environment's global flags.
func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{
		"--config", e.config,
		"--data-dir", e.dataDir,
		"--api-url", e.apiURL,
	}, args...))

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// fakeFirecrawl serves one crawl job, job-1, whose status is the given
// JSON body.
type fakeFirecrawl struct {
	t         *testing.T
	status    int
	body      map[string]any
	started   atomic.Int32
	cancelled atomic.Int32
	URL       string
}

func newFakeFirecrawl(t *testing.T, status int, body map[string]any) *fakeFirecrawl {
	t.Helper()

	f := &fakeFirecrawl{t: t, status: status, body: body}
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	f.URL = srv.URL
	return f
}

func (f *fakeFirecrawl) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/crawl", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		f.started.Add(1)
		writeJSON(f.t, w, http.StatusOK, map[string]any{"success": true, "id": "job-1"})
	})
	mux.HandleFunc("GET /v1/crawl/job-1", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Upgrade") != "" {
			http.NotFound(w, r)
			return
		}
		if !f.authorized(w, r) {
			return
		}
		writeJSON(f.t, w, f.status, f.body)
	})
	mux.HandleFunc("DELETE /v1/crawl/job-1", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		f.cancelled.Add(1)
		writeJSON(f.t, w, http.StatusOK, map[string]any{"status": "cancelled"})
	})
	return mux
}

func (f *fakeFirecrawl) authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") != "Bearer "+testAPIKey {
		writeJSON(f.t, w, http.StatusUnauthorized, map[string]any{"error": "Unauthorized: Invalid token"})
		return false
	}
	return true
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

// completedJob is a finished job with two pages.
func completedJob() map[string]any {
	return map[string]any{
		"success":     true,
		"status":      "completed",
		"total":       2,
		"completed":   2,
		"creditsUsed": 2,
		"data": []map[string]any{
			{
				"markdown": "# Introduction\n\nWelcome.",
				"metadata": map[string]any{
					"sourceURL": "https://docs.example.com/guide/intro",
					"title":     "Introduction",
					"language":  "en",
				},
			},
			{
				"markdown": "# API\n\nEndpoints.",
				"metadata": map[string]any{
					"sourceURL": "https://docs.example.com/api",
					"title":     "API",
				},
			},
		},
	}
}

func TestCrawlCommand(t *testing.T) {
	t.Parallel()

	t.Run("writes pages and records the run", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		fc := newFakeFirecrawl(t, http.StatusOK, completedJob())
		env.apiURL = fc.URL
		env.seedCredential(t, testAPIKey)

		reportFile := filepath.Join(t.TempDir(), "report.md")
		stdout, stderr, err := env.run(t, "", "crawl", "--no-prompt", "-w", env.workspace,
			"--report-file", reportFile, "https://docs.example.com")
		if err != nil {
			t.Fatalf("crawl failed: %v\nstderr: %s", err, stderr)
		}
		if n := fc.started.Load(); n != 1 {
			t.Errorf("expected one crawl job, got %d", n)
		}
		md, err := os.ReadFile(reportFile)
		if err != nil {
			t.Fatalf("report file not written: %v", err)
		}
		if !strings.Contains(string(md), "# Firedocs Crawl Report") {
			t.Errorf("unexpected report file:\n%s", md)
		}

		intro, err := os.ReadFile(filepath.Join(env.workspace, "docs", "docs_example_com", "guide", "intro.md"))
		if err != nil {
			t.Fatalf("intro page not written: %v", err)
		}
		for _, want := range []string{"source: https://docs.example.com/guide/intro", "title: Introduction", "Welcome."} {
			if !strings.Contains(string(intro), want) {
				t.Errorf("intro page missing %q:\n%s", want, intro)
			}
		}
		if _, err := os.Stat(filepath.Join(env.workspace, "docs", "docs_example_com", "api.md")); err != nil {
			t.Errorf("api page not written: %v", err)
		}

		for _, want := range []string{"FIREDOCS CRAWL", "Pages:      2", "Completed", "guide/", "intro.md"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("stdout missing %q:\n%s", want, stdout)
			}
		}

		stdout, _, err = env.run(t, "", "history")
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if !strings.Contains(stdout, "https://docs.example.com") || !strings.Contains(stdout, "2 pages") {
			t.Errorf("history does not show the run:\n%s", stdout)
		}
	})

	t.Run("json report", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.apiURL = newFakeFirecrawl(t, http.StatusOK, completedJob()).URL
		env.seedCredential(t, testAPIKey)

		stdout, stderr, err := env.run(t, "", "crawl", "--no-prompt", "--json", "-o", "out", "-w", env.workspace,
			"--scope", "https://docs.example.com/guide", "https://docs.example.com/guide/intro")
		if err != nil {
			t.Fatalf("crawl failed: %v\nstderr: %s", err, stderr)
		}

		var rep report.JSONReport
		if err := json.Unmarshal([]byte(stdout), &rep); err != nil {
			t.Fatalf("stdout is not a JSON report: %v\n%s", err, stdout)
		}
		if rep.Run == nil || rep.Run.Status != model.OutcomeCompleted {
			t.Fatalf("unexpected run: %+v", rep.Run)
		}
		if rep.Run.JobID != "job-1" || rep.Run.Pages != 2 {
			t.Errorf("unexpected run: %+v", rep.Run)
		}
		if rep.Run.Request.ScopeURL != "https://docs.example.com/guide" || rep.Run.Request.OutputFolder != "out" {
			t.Errorf("unexpected request: %+v", rep.Run.Request)
		}
		if _, err := os.Stat(filepath.Join(env.workspace, "out", "docs_example_com", "guide", "intro.md")); err != nil {
			t.Errorf("page not written to the output folder: %v", err)
		}
	})

	t.Run("trims url arguments", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.apiURL = newFakeFirecrawl(t, http.StatusOK, completedJob()).URL
		env.seedCredential(t, testAPIKey)

		stdout, stderr, err := env.run(t, "", "crawl", "--no-prompt", "--json", "-w", env.workspace,
			"--scope", " https://docs.example.com/guide\t", "  https://docs.example.com/guide/intro \n")
		if err != nil {
			t.Fatalf("crawl failed: %v\nstderr: %s", err, stderr)
		}

		var rep report.JSONReport
		if err := json.Unmarshal([]byte(stdout), &rep); err != nil {
			t.Fatalf("stdout is not a JSON report: %v\n%s", err, stdout)
		}
		if rep.Run == nil {
			t.Fatal("missing run")
		}
		if rep.Run.Request.StartURL != "https://docs.example.com/guide/intro" {
			t.Errorf("StartURL = %q", rep.Run.Request.StartURL)
		}
		if rep.Run.Request.ScopeURL != "https://docs.example.com/guide" {
			t.Errorf("ScopeURL = %q", rep.Run.Request.ScopeURL)
		}
	})

	t.Run("prompts for a missing credential", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.apiURL = newFakeFirecrawl(t, http.StatusOK, completedJob()).URL

		_, stderr, err := env.run(t, testAPIKey+"\n", "crawl", "-w", env.workspace, "https://docs.example.com")
		if err != nil {
			t.Fatalf("crawl failed: %v\nstderr: %s", err, stderr)
		}
		if !strings.Contains(stderr, ui.CredentialURL) {
			t.Errorf("expected the credential hint on stderr:\n%s", stderr)
		}
		if got := env.credential(t); got != testAPIKey {
			t.Errorf("stored credential = %q, want %q", got, testAPIKey)
		}
	})

	t.Run("rejected credential is cleared", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.apiURL = newFakeFirecrawl(t, http.StatusOK, completedJob()).URL
		env.seedCredential(t, "fc-wrong")

		_, stderr, err := env.run(t, "", "crawl", "--no-prompt", "-w", env.workspace, "https://docs.example.com")
		if err == nil {
			t.Fatal("expected an error")
		}
		if !strings.Contains(stderr, "rejected the API key") {
			t.Errorf("expected a credential message on stderr:\n%s", stderr)
		}
		if got := env.credential(t); got != "" {
			t.Errorf("credential not cleared: %q", got)
		}
	})

	t.Run("missing URL without prompting", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		_, _, err := env.run(t, "", "crawl", "--no-prompt", "-w", env.workspace)
		if !errors.Is(err, errMissingURL) {
			t.Errorf("expected errMissingURL, got %v", err)
		}
	})

	t.Run("prompts for a missing URL", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.apiURL = newFakeFirecrawl(t, http.StatusOK, completedJob()).URL
		env.seedCredential(t, testAPIKey)

		// URL, no scope, output folder.
		stdin := "https://docs.example.com\n\nmanual\n"
		_, stderr, err := env.run(t, stdin, "crawl", "-w", env.workspace)
		if err != nil {
			t.Fatalf("crawl failed: %v\nstderr: %s", err, stderr)
		}
		if _, err := os.Stat(filepath.Join(env.workspace, "manual", "docs_example_com", "api.md")); err != nil {
			t.Errorf("page not written to the prompted folder: %v", err)
		}
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			args []string
		}{
			{name: "bad url", args: []string{"ftp://docs.example.com"}},
			{name: "scope mismatch", args: []string{"--scope", "https://other.example.com/guide", "https://docs.example.com"}},
			{name: "output outside workspace", args: []string{"-o", "../escape", "https://docs.example.com"}},
			{name: "conflicting reports", args: []string{"-j", "-m", "https://docs.example.com"}},
			{name: "bad transport", args: []string{"--transport", "carrier-pigeon", "https://docs.example.com"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				env := newTestEnv(t)
				args := append([]string{"crawl", "--no-prompt", "-w", env.workspace}, tt.args...)
				if _, _, err := env.run(t, "", args...); err == nil {
					t.Error("expected an error")
				}
			})
		}
	})
}

func TestConfigureCommand(t *testing.T) {
	t.Parallel()

	t.Run("stores the entered key", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		stdout, _, err := env.run(t, "  "+testAPIKey+"  \n", "configure")
		if err != nil {
			t.Fatalf("configure failed: %v", err)
		}
		if !strings.Contains(stdout, "API key saved") {
			t.Errorf("unexpected output: %q", stdout)
		}
		if got := env.credential(t); got != testAPIKey {
			t.Errorf("stored credential = %q, want %q", got, testAPIKey)
		}
	})

	t.Run("empty input is declined", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		_, _, err := env.run(t, "", "configure")
		if !errors.Is(err, ui.ErrDeclined) {
			t.Errorf("expected ErrDeclined, got %v", err)
		}
	})

	t.Run("clear removes the key", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.seedCredential(t, testAPIKey)

		if _, _, err := env.run(t, "", "configure", "--clear"); err != nil {
			t.Fatalf("configure --clear failed: %v", err)
		}
		if got := env.credential(t); got != "" {
			t.Errorf("credential not cleared: %q", got)
		}
	})
}

func TestJobCommands(t *testing.T) {
	t.Parallel()

	t.Run("status", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.apiURL = newFakeFirecrawl(t, http.StatusOK, completedJob()).URL
		env.seedCredential(t, testAPIKey)

		stdout, _, err := env.run(t, "", "status", "job-1")
		if err != nil {
			t.Fatalf("status failed: %v", err)
		}
		for _, want := range []string{"job-1", "completed", "2/2 pages", "Credits used: 2"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("status output missing %q:\n%s", want, stdout)
			}
		}
	})

	t.Run("status json", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.apiURL = newFakeFirecrawl(t, http.StatusOK, completedJob()).URL
		env.seedCredential(t, testAPIKey)

		stdout, _, err := env.run(t, "", "status", "--json", "job-1")
		if err != nil {
			t.Fatalf("status failed: %v", err)
		}
		var got jobSummary
		if err := json.Unmarshal([]byte(stdout), &got); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, stdout)
		}
		if got.ID != "job-1" || got.Pages != 2 || got.ExpiresAt != nil {
			t.Errorf("unexpected summary: %+v", got)
		}
	})

	t.Run("cancel", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		fc := newFakeFirecrawl(t, http.StatusOK, completedJob())
		env.apiURL = fc.URL
		env.seedCredential(t, testAPIKey)

		stdout, _, err := env.run(t, "", "cancel", "job-1")
		if err != nil {
			t.Fatalf("cancel failed: %v", err)
		}
		if n := fc.cancelled.Load(); n != 1 {
			t.Errorf("expected one cancel request, got %d", n)
		}
		if !strings.Contains(stdout, "Cancelled job job-1") {
			t.Errorf("unexpected output: %q", stdout)
		}
	})

	t.Run("requires a stored key", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		for _, args := range [][]string{{"status", "job-1"}, {"cancel", "job-1"}} {
			if _, _, err := env.run(t, "", args...); !errors.Is(err, errNoCredential) {
				t.Errorf("%v: expected errNoCredential, got %v", args, err)
			}
		}
	})
}

func TestHistoryCommand(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		stdout, _, err := env.run(t, "", "history")
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if !strings.Contains(stdout, "No crawls recorded") {
			t.Errorf("unexpected output:\n%s", stdout)
		}
	})

	t.Run("json lists recorded runs", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		db, err := store.Open(env.dataDir, store.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}
		outcome := model.NewCrawlOutcome("run-1", model.CrawlRequest{
			StartURL:     "https://docs.example.com",
			OutputFolder: "docs",
		}, time.Now().UTC())
		outcome.Status = model.OutcomeCancelled
		outcome.Pages = 3
		if err := db.SaveRun(context.Background(), outcome); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
		db.Close()

		stdout, _, err := env.run(t, "", "history", "--json", "-n", "5")
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if !strings.Contains(stdout, `"run_id": "run-1"`) || !strings.Contains(stdout, `"pages": 3`) {
			t.Errorf("run missing from JSON:\n%s", stdout)
		}

		stdout, _, err = env.run(t, "", "history", "run-1")
		if err != nil {
			t.Fatalf("history run-1 failed: %v", err)
		}
		if !strings.Contains(stdout, "FIREDOCS CRAWL") || !strings.Contains(stdout, "Cancelled") {
			t.Errorf("unexpected run summary:\n%s", stdout)
		}

		if _, _, err := env.run(t, "", "history", "run-2"); !errors.Is(err, errRunNotFound) {
			t.Errorf("expected errRunNotFound, got %v", err)
		}
	})
}

func TestListCommand(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	stdout, _, err := env.run(t, "", "list", "-w", env.workspace)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(stdout, "No documentation found") {
		t.Errorf("unexpected output:\n%s", stdout)
	}

	for _, rel := range []string{"docs/docs_example_com/index.md", "docs/docs_example_com/guide/intro.md", "docs/go_dev/doc.md"} {
		target := filepath.Join(env.workspace, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(target, []byte("# page\n"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	stdout, _, err = env.run(t, "", "list", "-w", env.workspace)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, want := range []string{"docs_example_com", "2 files", "go_dev", "1 files"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("list output missing %q:\n%s", want, stdout)
		}
	}
}

func TestCrawlHelpExplainsScopeStart(t *testing.T) {
	t.Parallel()

	long := NewCrawlCmd().Long
	if !strings.Contains(long, "still starts at the given URL") {
		t.Errorf("crawl help does not say where a scoped crawl starts:\n%s", long)
	}
}
