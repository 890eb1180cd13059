package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/firedocs/internal/config"
	"github.com/nao1215/firedocs/internal/firecrawl"
	firelog "github.com/nao1215/firedocs/internal/log"
	"github.com/nao1215/firedocs/internal/report"
	"github.com/nao1215/firedocs/internal/store"
	"github.com/nao1215/firedocs/internal/ui"
)

// errNoCredential is returned by commands that need a stored API key but do
// not prompt for one.
var errNoCredential = errors.New("no API key configured (run 'firedocs configure')")

// getBoolFlag retrieves a bool flag from the command or the root's
// persistent flags.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// getStringFlag retrieves a string flag from the command or the root's
// persistent flags.
func getStringFlag(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetString(name)
		if err != nil {
			return ""
		}
	}
	return v
}

// setupLogger creates the secure logger selected by the global flags.
func setupLogger(cmd *cobra.Command) *slog.Logger {
	return firelog.NewLogger(cmd.ErrOrStderr(), firelog.Options{
		Verbose: getBoolFlag(cmd, "verbose"),
		JSON:    getBoolFlag(cmd, "log-json"),
	})
}

// loadConfig builds the configuration shared by all commands: defaults,
// then the settings file, then the global flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(getStringFlag(cmd, "config"))
	if err != nil {
		return nil, err
	}
	if apiURL := getStringFlag(cmd, "api-url"); apiURL != "" {
		cfg.APIURL = apiURL
	}
	if dataDir := getStringFlag(cmd, "data-dir"); dataDir != "" {
		cfg.DBDir = dataDir
	}
	cfg.Verbose = getBoolFlag(cmd, "verbose")
	return cfg, nil
}

// readReportFlags sets the report format flags of cmd on cfg.
func readReportFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	return err
}

// addReportFlags registers the report format flags.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
}

// newReportWriter returns the writer selected by the report flags.
func newReportWriter(cfg *config.Config, out io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(out, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(out)
	default:
		return report.NewSimpleWriter(out,
			report.WithVerbose(cfg.Verbose),
			report.WithColor(ui.IsTerminal(out)))
	}
}

// openStore opens the state database of cfg.
func openStore(cfg *config.Config) (*store.StateDB, error) {
	db, err := store.Open(cfg.DBDir, store.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	return db, nil
}

// clientOptions returns the firecrawl client options for cfg.
func clientOptions(cfg *config.Config, logger *slog.Logger) ([]firecrawl.Option, error) {
	transport, err := firecrawl.ParseTransport(cfg.Transport)
	if err != nil {
		return nil, err
	}
	return []firecrawl.Option{
		firecrawl.WithBaseURL(cfg.APIURL),
		firecrawl.WithTransport(transport),
		firecrawl.WithPollInterval(cfg.PollInterval),
		firecrawl.WithUserAgent(userAgent()),
		firecrawl.WithLogger(logger),
	}, nil
}

// newStoredClient creates a firecrawl client with the stored API key.
func newStoredClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*firecrawl.Client, error) {
	db, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	apiKey, err := db.Credential(ctx)
	if err != nil {
		return nil, err
	}
	if apiKey == "" {
		return nil, errNoCredential
	}

	opts, err := clientOptions(cfg, logger)
	if err != nil {
		return nil, err
	}
	return firecrawl.NewClient(apiKey, opts...)
}

// resolveWorkspace returns the absolute workspace directory.
func resolveWorkspace(workspace string) (string, error) {
	if workspace == "" {
		return os.Getwd()
	}
	return filepath.Abs(workspace)
}
