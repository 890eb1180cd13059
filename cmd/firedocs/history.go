package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/firedocs/internal/config"
)

// errRunNotFound is returned when no run has the requested ID.
var errRunNotFound = errors.New("no such run")

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show past crawl runs",
		Long: `History lists the crawl runs recorded in the state database, newest first.
With a run ID, the full summary of that run is shown.

Examples:
  # Show the last 20 runs
  firedocs history

  # Show all runs with run and job IDs
  firedocs history -n 0 -v

  # Show one run as Markdown
  firedocs history -m 0b6f7c1e-6a4e-4d47-9a4b-2f0f5d3c9e11`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", config.DefaultHistoryLimit,
		"Number of runs to show (0 shows all)")
	addReportFlags(cmd)

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := readReportFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	w := newReportWriter(cfg, cmd.OutOrStdout())

	if len(args) == 1 {
		run, err := db.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if run == nil {
			return fmt.Errorf("%w: %s", errRunNotFound, args[0])
		}
		_, err = w.Write(run)
		return err
	}

	runs, err := db.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	_, err = w.WriteHistory(runs)
	return err
}
