package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/firedocs/internal/document"
	"github.com/nao1215/firedocs/internal/firecrawl"
	"github.com/nao1215/firedocs/internal/model"
	"github.com/nao1215/firedocs/internal/naming"
)

const (
	// DefaultTimeout bounds one run. Zero disables the timeout.
	DefaultTimeout = 30 * time.Minute

	// DefaultWriteConcurrency is the number of pages written in parallel.
	DefaultWriteConcurrency = 4

	// cancelTimeout bounds the best-effort remote cancel after a run is
	// cancelled or times out.
	cancelTimeout = 10 * time.Second
)

// Orchestrator runs crawls and materializes their pages as files.
type Orchestrator struct {
	sink    Sink
	creds   CredentialStore
	factory ServiceFactory

	logger   *slog.Logger
	progress ProgressReporter
	prompter CredentialPrompter
	recorder RunRecorder

	timeout         time.Duration
	concurrency     int
	titleInFilename bool
	baseOptions     firecrawl.CrawlOptions
	now             func() time.Time
	newID           func() string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithProgress sets where progress messages are reported.
// Reports are delivered one at a time.
func WithProgress(p ProgressReporter) Option {
	return func(o *Orchestrator) {
		o.progress = p
	}
}

// WithPrompter sets how a missing API key is requested. Without a prompter
// a missing key fails the run with ErrMissingCredential.
func WithPrompter(p CredentialPrompter) Option {
	return func(o *Orchestrator) {
		o.prompter = p
	}
}

// WithRecorder sets where finished runs are stored.
func WithRecorder(r RunRecorder) Option {
	return func(o *Orchestrator) {
		o.recorder = r
	}
}

// WithTimeout sets the run timeout. Zero disables it; negative values are
// ignored.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.timeout = d
		}
	}
}

// WithWriteConcurrency sets how many pages are written in parallel.
func WithWriteConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithTitleInFilename appends the page title slug to each file name.
func WithTitleInFilename(enabled bool) Option {
	return func(o *Orchestrator) {
		o.titleInFilename = enabled
	}
}

// WithCrawlOptions sets the crawl parameters every run starts from, usually
// the merged per-site configuration. The result format and the scope
// restriction are always applied on top.
func WithCrawlOptions(opts firecrawl.CrawlOptions) Option {
	return func(o *Orchestrator) {
		o.baseOptions = opts
	}
}

// WithClock sets the time source used for run and crawl timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// New creates an Orchestrator. A nil sink makes every run fail with
// ErrNoWorkspace.
func New(sink Sink, creds CredentialStore, factory ServiceFactory, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sink:        sink,
		creds:       creds,
		factory:     factory,
		timeout:     DefaultTimeout,
		concurrency: DefaultWriteConcurrency,
		now:         time.Now,
		newID:       uuid.NewString,
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = slog.Default()
	}

	return o
}

// Run executes one crawl run.
//
// Preconditions that prevent the crawl from starting (no workspace, no API
// key, output folder not writable) are returned as an error with a nil
// outcome. Otherwise the settled outcome is returned; for a failed run the
// error is outcome.Err. Cancelled and completed runs return a nil error.
func (o *Orchestrator) Run(ctx context.Context, req model.CrawlRequest) (*model.CrawlOutcome, error) {
	if o.sink == nil {
		return nil, ErrNoWorkspace
	}

	apiKey, err := o.credential(ctx)
	if err != nil {
		return nil, err
	}

	svc, err := o.factory(apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create crawl client: %w", err)
	}

	outcome := model.NewCrawlOutcome(o.newID(), req, o.now())
	outcome.DomainFolder = naming.DomainFolder(req.DomainSource())
	root := path.Join(req.OutputFolder, outcome.DomainFolder)

	if err := o.sink.MkdirAll(req.OutputFolder); err != nil {
		return nil, fmt.Errorf("failed to create output folder: %w", err)
	}
	if err := o.sink.MkdirAll(root); err != nil {
		return nil, fmt.Errorf("failed to create domain folder: %w", err)
	}

	runCtx, cancel := o.runContext(ctx)
	defer cancel()

	o.logger.Info("starting crawl",
		"run_id", outcome.RunID,
		"url", req.StartURL,
		"scope", req.ScopeURL,
		"output", root,
	)

	sub, err := svc.Watch(runCtx, req.StartURL, o.crawlOptions(req))
	if err != nil {
		o.settle(ctx, runCtx, svc, outcome, err)
		return o.finish(ctx, outcome)
	}
	outcome.JobID = sub.ID()
	o.logger.Debug("crawl started", "run_id", outcome.RunID, "job_id", outcome.JobID)

	w := newPageWriter(o, req.OutputFolder, outcome.DomainFolder)
	streamErr := o.consume(runCtx, sub, w)

	if err := sub.Close(); err != nil {
		o.logger.Debug("failed to close event stream", "job_id", outcome.JobID, "error", err)
	}
	w.wait()

	outcome.Pages, outcome.Skipped = w.counts()
	o.settle(ctx, runCtx, svc, outcome, streamErr)
	return o.finish(ctx, outcome)
}

func (o *Orchestrator) runContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.timeout > 0 {
		return context.WithTimeout(ctx, o.timeout)
	}
	return context.WithCancel(ctx)
}

// credential returns the stored API key, prompting for and persisting one
// when none is stored.
func (o *Orchestrator) credential(ctx context.Context) (string, error) {
	if o.creds == nil {
		return "", ErrMissingCredential
	}

	apiKey, err := o.creds.Credential(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}
	if apiKey = strings.TrimSpace(apiKey); apiKey != "" {
		return apiKey, nil
	}

	if o.prompter == nil {
		return "", ErrMissingCredential
	}
	apiKey, err = o.prompter.PromptCredential(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMissingCredential, err)
	}
	if apiKey = strings.TrimSpace(apiKey); apiKey == "" {
		return "", ErrMissingCredential
	}

	if err := o.creds.SetCredential(ctx, apiKey); err != nil {
		return "", fmt.Errorf("failed to save API key: %w", err)
	}
	o.logger.Info("API key saved")
	return apiKey, nil
}

// crawlOptions builds the remote crawl parameters for req.
func (o *Orchestrator) crawlOptions(req model.CrawlRequest) firecrawl.CrawlOptions {
	opts := o.baseOptions
	opts.IncludePaths = slices.Clone(opts.IncludePaths)
	opts.ExcludePaths = slices.Clone(opts.ExcludePaths)
	opts.ScrapeOptions.Formats = []string{firecrawl.FormatMarkdown}

	if pattern := naming.ScopePattern(req.ScopeURL); pattern != "" {
		opts.IncludePaths = append(opts.IncludePaths, pattern)
		opts.AllowBackwardLinks = true
	}
	return opts
}

// consume reads events until a terminal event arrives, the stream ends or
// ctx is done. It returns nil only for a "done" event.
func (o *Orchestrator) consume(ctx context.Context, sub Subscription, w *pageWriter) error {
	events := sub.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return errStreamClosed
			}
			// A cancelled run must not start another write, even when the
			// event was already buffered.
			if ctx.Err() != nil {
				return ctx.Err()
			}

			switch ev.Type {
			case firecrawl.EventDocument:
				if ev.Document == nil {
					o.logger.Debug("ignoring empty document event", "job_id", sub.ID())
					continue
				}
				page := pageFromDocument(ev.Document)
				o.logger.Debug("received document", "job_id", sub.ID(), "url", page.SourceURL)
				w.schedule(page)
			case firecrawl.EventDone:
				return nil
			case firecrawl.EventError:
				if ev.Err == nil {
					return firecrawl.ErrCrawlFailed
				}
				return ev.Err
			}
		}
	}
}

// settle records the terminal state of the run from the error that ended it.
func (o *Orchestrator) settle(ctx, runCtx context.Context, svc CrawlService, outcome *model.CrawlOutcome, err error) {
	outcome.FinishedAt = o.now()

	switch {
	case err == nil:
		outcome.Status = model.OutcomeCompleted
	case ctx.Err() != nil:
		outcome.Status = model.OutcomeCancelled
		o.cancelRemote(ctx, svc, outcome.JobID)
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		o.fail(outcome, fmt.Errorf("%w after %s", ErrTimeout, o.timeout))
		o.cancelRemote(ctx, svc, outcome.JobID)
	case firecrawl.IsAuthError(err):
		if clearErr := o.creds.ClearCredential(context.WithoutCancel(ctx)); clearErr != nil {
			o.logger.Warn("failed to clear API key", "error", clearErr)
		}
		o.fail(outcome, fmt.Errorf("%w: %w", ErrInvalidCredential, err))
	default:
		o.fail(outcome, fmt.Errorf("%w: %w", ErrRemote, err))
	}
}

func (o *Orchestrator) fail(outcome *model.CrawlOutcome, err error) {
	outcome.Status = model.OutcomeFailed
	outcome.Err = err
	outcome.Reason = err.Error()
}

// cancelRemote asks the service to stop the job. It is best effort: the
// run has already ended locally.
func (o *Orchestrator) cancelRemote(ctx context.Context, svc CrawlService, jobID string) {
	if jobID == "" {
		return
	}
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cancelTimeout)
	defer cancel()

	if err := svc.Cancel(cctx, jobID); err != nil {
		o.logger.Warn("failed to cancel remote crawl", "job_id", jobID, "error", err)
		return
	}
	o.logger.Debug("remote crawl cancelled", "job_id", jobID)
}

// finish stores the settled outcome and converts it to Run's return values.
func (o *Orchestrator) finish(ctx context.Context, outcome *model.CrawlOutcome) (*model.CrawlOutcome, error) {
	o.logger.Info("crawl finished",
		"run_id", outcome.RunID,
		"job_id", outcome.JobID,
		"status", outcome.Status.String(),
		"pages", outcome.Pages,
		"skipped", outcome.Skipped,
		"duration", outcome.Duration(),
	)

	if o.recorder != nil {
		if err := o.recorder.SaveRun(context.WithoutCancel(ctx), outcome); err != nil {
			o.logger.Warn("failed to record crawl run", "run_id", outcome.RunID, "error", err)
		}
	}

	if outcome.Status == model.OutcomeFailed {
		return outcome, outcome.Err
	}
	return outcome, nil
}

func pageFromDocument(doc *firecrawl.Document) model.PageEvent {
	return model.PageEvent{
		SourceURL:    doc.PageURL(),
		Title:        doc.Metadata.Title,
		MarkdownBody: doc.Markdown,
		Language:     doc.Metadata.Language,
		Description:  doc.Metadata.Description,
	}
}

// pageWriter writes pages concurrently while keeping the last page received
// for a path as the final content of that file.
type pageWriter struct {
	o      *Orchestrator
	output string
	domain string
	g      errgroup.Group

	mu      sync.Mutex
	seq     uint64
	latest  map[string]uint64
	locks   map[string]*sync.Mutex
	pages   int
	skipped int
}

func newPageWriter(o *Orchestrator, output, domain string) *pageWriter {
	w := &pageWriter{
		o:      o,
		output: output,
		domain: domain,
		latest: make(map[string]uint64),
		locks:  make(map[string]*sync.Mutex),
	}
	w.g.SetLimit(o.concurrency)
	return w
}

// schedule queues page for writing. It blocks while the maximum number of
// writes is in flight.
func (w *pageWriter) schedule(page model.PageEvent) {
	title := ""
	if w.o.titleInFilename {
		title = page.Title
	}
	dest := model.DerivedPath{
		DomainFolder: w.domain,
		RelativeFile: naming.RelativeFilePath(page.SourceURL, title),
	}
	rel := dest.RelativeFile
	target := path.Join(w.output, dest.Join())

	w.mu.Lock()
	w.seq++
	seq := w.seq
	w.latest[target] = seq
	lock, ok := w.locks[target]
	if !ok {
		lock = &sync.Mutex{}
		w.locks[target] = lock
	}
	w.mu.Unlock()

	crawledAt := w.o.now()
	w.g.Go(func() error {
		lock.Lock()
		defer lock.Unlock()

		if w.superseded(target, seq) {
			w.o.logger.Debug("page superseded by a later page", "path", target, "url", page.SourceURL)
			w.record(nil)
			return nil
		}

		w.o.logger.Debug("writing document", "path", target, "url", page.SourceURL)
		w.record(w.write(page, rel, target, crawledAt))
		return nil
	})
}

func (w *pageWriter) write(page model.PageEvent, rel, target string, crawledAt time.Time) error {
	data, err := document.Render(page, rel, crawledAt)
	if err != nil {
		return err
	}
	if err := w.o.sink.MkdirAll(path.Dir(target)); err != nil {
		return err
	}
	return w.o.sink.WriteFile(target, data)
}

func (w *pageWriter) superseded(target string, seq uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.latest[target] != seq
}

// record counts a finished write and reports progress. Progress messages
// are sent under the lock so they arrive in order.
func (w *pageWriter) record(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		w.skipped++
		w.o.logger.Warn("page write failed", "error", err)
		return
	}
	w.pages++
	if w.o.progress != nil {
		w.o.progress.Report(fmt.Sprintf("Crawled %d pages", w.pages))
	}
}

func (w *pageWriter) wait() {
	_ = w.g.Wait()
}

func (w *pageWriter) counts() (pages, skipped int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pages, w.skipped
}
