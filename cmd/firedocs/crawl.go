package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/firedocs/internal/config"
	"github.com/nao1215/firedocs/internal/crawler"
	"github.com/nao1215/firedocs/internal/firecrawl"
	"github.com/nao1215/firedocs/internal/model"
	"github.com/nao1215/firedocs/internal/naming"
	"github.com/nao1215/firedocs/internal/report"
	"github.com/nao1215/firedocs/internal/ui"
	"github.com/nao1215/firedocs/internal/writer"
)

// errMissingURL is returned when no start URL is given and prompting is
// disabled.
var errMissingURL = errors.New("no URL provided (specify the documentation URL as an argument)")

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url]",
		Short: "Crawl a documentation site into Markdown files",
		Long: `Crawl starts a Firecrawl crawl at the given URL and writes every page as a
Markdown file with a front matter header:

  <workspace>/<output>/<domain>/<path>.md

With --scope, only pages under the first path segment of the scope URL are
crawled, and the domain folder is derived from the scope URL. The crawl
still starts at the given URL, not at the scope URL; links back up to the
scope section are followed so its other pages are reached.

Missing input (URL, output folder, API key) is prompted for unless
--no-prompt is given. Press Ctrl-C to stop the crawl; pages already written
are kept.

Examples:
  # Crawl a whole documentation site into ./docs/docs_example_com
  firedocs crawl https://docs.example.com

  # Crawl the guide section only
  firedocs crawl --scope https://docs.example.com/guide https://docs.example.com/guide/intro

  # Use the polling transport and a Markdown summary
  firedocs crawl --transport poll -m https://docs.example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCrawlCmd,
	}

	cmd.Flags().StringP("scope", "s", "",
		"Restrict the crawl to the section of this URL (must be a prefix of the start URL)")
	cmd.Flags().StringP("output", "o", "",
		"Output folder relative to the workspace (default: docsFolder setting, \""+config.DefaultDocsFolder+"\")")
	cmd.Flags().StringP("workspace", "w", "",
		"Workspace directory (default: current directory)")
	cmd.Flags().String("transport", "",
		"Event transport: websocket or poll (default: transport setting, \""+config.DefaultTransport+"\")")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for the whole crawl (0 disables)")
	cmd.Flags().IntP("limit", "l", 0,
		"Maximum number of pages to crawl (0 uses the service default)")
	cmd.Flags().IntP("max-depth", "d", 0,
		"Maximum link depth from the start URL (0 uses the service default)")
	cmd.Flags().Bool("title-in-filename", false,
		"Append the page title to each file name")
	cmd.Flags().Bool("no-prompt", false,
		"Never prompt; missing input is an error")
	cmd.Flags().String("report-file", "",
		"Also write a Markdown report to this file")
	addReportFlags(cmd)

	return cmd
}

// crawlInput is the user input of one crawl.
type crawlInput struct {
	startURL string
	scopeURL string
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, input, err := buildCrawlConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd)

	// Cancel the crawl cooperatively on Ctrl-C.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cmd, cfg, input, logger)
}

// buildCrawlConfig creates a Config from the settings file and the crawl
// flags. Flags override settings only when given.
func buildCrawlConfig(cmd *cobra.Command, args []string) (*config.Config, crawlInput, error) {
	var input crawlInput

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, input, err
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		if cfg.DocsFolder, err = flags.GetString("output"); err != nil {
			return nil, input, err
		}
	}
	if flags.Changed("transport") {
		if cfg.Transport, err = flags.GetString("transport"); err != nil {
			return nil, input, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, input, err
		}
	}
	if flags.Changed("limit") {
		if cfg.Limit, err = flags.GetInt("limit"); err != nil {
			return nil, input, err
		}
	}
	if flags.Changed("max-depth") {
		if cfg.MaxDepth, err = flags.GetInt("max-depth"); err != nil {
			return nil, input, err
		}
	}
	if flags.Changed("title-in-filename") {
		if cfg.TitleInFilename, err = flags.GetBool("title-in-filename"); err != nil {
			return nil, input, err
		}
	}

	if cfg.Workspace, err = flags.GetString("workspace"); err != nil {
		return nil, input, err
	}
	if cfg.NoPrompt, err = flags.GetBool("no-prompt"); err != nil {
		return nil, input, err
	}
	if err := readReportFlags(cmd, cfg); err != nil {
		return nil, input, err
	}

	if input.scopeURL, err = flags.GetString("scope"); err != nil {
		return nil, input, err
	}
	input.scopeURL = strings.TrimSpace(input.scopeURL)
	if len(args) > 0 {
		input.startURL = strings.TrimSpace(args[0])
	}
	return cfg, input, nil
}

// collectInput validates the given input and prompts for what is missing.
// The output folder is only asked for when the start URL was prompted too.
func collectInput(cmd *cobra.Command, cfg *config.Config, input crawlInput, prompter *ui.Prompter) (crawlInput, error) {
	if input.startURL == "" {
		if cfg.NoPrompt {
			return input, errMissingURL
		}

		var err error
		input.startURL, err = prompter.Ask("Documentation URL", "", naming.ValidateURL)
		if err != nil {
			return input, err
		}
		if input.scopeURL == "" {
			input.scopeURL, err = prompter.AskOptional("Restrict to section URL (optional)", func(s string) error {
				return naming.ValidateScope(input.startURL, s)
			})
			if err != nil {
				return input, err
			}
		}
		if !cmd.Flags().Changed("output") {
			cfg.DocsFolder, err = prompter.Ask("Output folder", cfg.DocsFolder, validateFolder)
			if err != nil {
				return input, err
			}
		}
	}

	if err := naming.ValidateURL(input.startURL); err != nil {
		return input, fmt.Errorf("invalid URL %q: %w", input.startURL, err)
	}
	if err := naming.ValidateScope(input.startURL, input.scopeURL); err != nil {
		return input, err
	}
	return input, nil
}

// validateFolder accepts relative folders that stay inside the workspace.
func validateFolder(s string) error {
	if !filepath.IsLocal(s) {
		return config.ErrInvalidDocsFolder
	}
	return nil
}

// runCrawl executes one crawl and prints its summary.
func runCrawl(ctx context.Context, cmd *cobra.Command, cfg *config.Config, input crawlInput, logger *slog.Logger) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	notifier := ui.NewNotifier(errOut)
	prompter := ui.NewPrompter(cmd.InOrStdin(), errOut)

	input, err := collectInput(cmd, cfg, input, prompter)
	if err != nil {
		return err
	}

	workspace, err := resolveWorkspace(cfg.Workspace)
	if err != nil {
		return fmt.Errorf("%w: %w", crawler.ErrNoWorkspace, err)
	}
	sink, err := writer.NewDirSink(workspace)
	if err != nil {
		return fmt.Errorf("%w: %w", crawler.ErrNoWorkspace, err)
	}

	output := filepath.ToSlash(filepath.Clean(cfg.DocsFolder))
	lock, err := sink.Lock(output)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release output lock", "error", err)
		}
	}()

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	clientOpts, err := clientOptions(cfg, logger)
	if err != nil {
		return err
	}

	req := model.CrawlRequest{
		StartURL:     input.startURL,
		ScopeURL:     input.scopeURL,
		OutputFolder: output,
	}

	progress := ui.NewProgress(errOut, "Crawling "+req.StartURL)
	opts := []crawler.Option{
		crawler.WithLogger(logger),
		crawler.WithProgress(progress),
		crawler.WithRecorder(db),
		crawler.WithTimeout(cfg.Timeout),
		crawler.WithWriteConcurrency(cfg.WriteConcurrency),
		crawler.WithTitleInFilename(cfg.TitleInFilename),
		crawler.WithCrawlOptions(crawlOptionsFor(cfg, req)),
	}
	if !cfg.NoPrompt {
		prompter.PauseDuring(progress)
		opts = append(opts, crawler.WithPrompter(prompter))
	}
	orch := crawler.New(sink, db, crawler.ClientFactory(clientOpts...), opts...)

	progress.Start()
	outcome, err := orch.Run(ctx, req)
	progress.Stop("")

	if outcome == nil {
		return err
	}

	if werr := writeCrawlReport(cmd, cfg, outcome); werr != nil {
		logger.Error("failed to write report", "error", werr)
	}

	switch {
	case errors.Is(err, crawler.ErrInvalidCredential):
		notifier.Error("Firecrawl rejected the API key. It has been removed; run the crawl again or 'firedocs configure' to enter a new one.")
	case outcome.Status == model.OutcomeCancelled:
		notifier.Warn("Crawl cancelled. %d page(s) kept in %s", outcome.Pages, outcome.OutputPath())
	case outcome.Status == model.OutcomeCompleted:
		if outcome.Skipped > 0 {
			notifier.Warn("%d page(s) could not be written (run with -v for details)", outcome.Skipped)
		}
		if cfg.AutoIndex && !cfg.JSONReport {
			printIndex(out, sink, outcome.OutputPath(), logger)
		}
	}
	return err
}

// writeCrawlReport prints the summary of outcome and, with --report-file,
// writes a Markdown copy to that file.
func writeCrawlReport(cmd *cobra.Command, cfg *config.Config, outcome *model.CrawlOutcome) error {
	reportFile, err := cmd.Flags().GetString("report-file")
	if err != nil {
		return err
	}

	w := newReportWriter(cfg, cmd.OutOrStdout())
	if reportFile != "" {
		f, err := os.Create(filepath.Clean(reportFile))
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		w = report.NewMultiWriter(w, report.NewMarkdownWriter(f))
	}

	_, err = w.Write(outcome)
	return err
}

// crawlOptionsFor merges the global settings with the per-site settings of
// the request's host.
func crawlOptionsFor(cfg *config.Config, req model.CrawlRequest) firecrawl.CrawlOptions {
	host := ""
	if u, err := url.Parse(req.DomainSource()); err == nil {
		host = u.Hostname()
	}
	site := cfg.SiteConfigs.GetSiteConfig(host)

	opts := firecrawl.CrawlOptions{
		IncludePaths:       site.IncludePaths,
		ExcludePaths:       site.ExcludePaths,
		Limit:              cfg.Limit,
		MaxDepth:           cfg.MaxDepth,
		AllowExternalLinks: cfg.AllowExternalLinks,
	}
	if site.Limit != 0 {
		opts.Limit = site.Limit
	}
	if site.MaxDepth != 0 {
		opts.MaxDepth = site.MaxDepth
	}
	if site.AllowExternalLinks != nil {
		opts.AllowExternalLinks = *site.AllowExternalLinks
	}
	return opts
}

// printIndex prints the file tree of a finished crawl.
func printIndex(out io.Writer, sink *writer.DirSink, dir string, logger *slog.Logger) {
	files, err := sink.ListFiles(dir)
	if err != nil {
		logger.Warn("failed to list written files", "dir", dir, "error", err)
		return
	}
	if len(files) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, renderTree(path.Clean(dir), files))
}
