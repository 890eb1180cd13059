package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/firedocs/internal/config"
)

// NewRootCmd creates the root command for firedocs.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "firedocs",
		Short: "Crawl documentation sites into local Markdown files",
		Long: `firedocs crawls a documentation site with the Firecrawl API and writes
every page as a Markdown file under <workspace>/<docs folder>/<domain>/.

The Firecrawl API key is asked for on first use and stored in the state
database (XDG data directory). Run 'firedocs configure' to change it.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Settings file path (default: .firedocs in current or home directory)")
	cmd.PersistentFlags().String("api-url", "",
		"Firecrawl API URL (default: settings file or "+config.DefaultAPIURL+")")
	cmd.PersistentFlags().String("data-dir", "",
		"Directory of the state database (default: XDG data directory)")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewConfigureCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewCancelCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
