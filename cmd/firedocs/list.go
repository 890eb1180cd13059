package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/firedocs/internal/writer"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the documentation sets in the docs folder",
		Long: `List shows one entry per domain folder below the docs folder, with the
number of Markdown files and the time of the latest change.`,
		Args: cobra.NoArgs,
		RunE: runListCmd,
	}

	cmd.Flags().StringP("output", "o", "",
		"Docs folder relative to the workspace (default: docsFolder setting)")
	cmd.Flags().StringP("workspace", "w", "",
		"Workspace directory (default: current directory)")
	addReportFlags(cmd)

	return cmd
}

// runListCmd executes the list command.
func runListCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("output") {
		if cfg.DocsFolder, err = cmd.Flags().GetString("output"); err != nil {
			return err
		}
	}
	if cfg.Workspace, err = cmd.Flags().GetString("workspace"); err != nil {
		return err
	}
	if err := readReportFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	workspace, err := resolveWorkspace(cfg.Workspace)
	if err != nil {
		return err
	}
	sink, err := writer.NewDirSink(workspace)
	if err != nil {
		return err
	}

	sets, err := sink.ListDocSets(cfg.DocsFolder)
	if err != nil {
		return err
	}
	_, err = newReportWriter(cfg, cmd.OutOrStdout()).WriteDocSets(sets)
	return err
}
