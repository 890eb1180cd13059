package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/firedocs/internal/ui"
)

// NewConfigureCmd creates the configure command.
func NewConfigureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Set or clear the stored Firecrawl API key",
		Long: `Configure asks for a Firecrawl API key and stores it in the state database.
The key is read without echo when the input is a terminal, so it can also
be piped in.

Examples:
  # Enter a new API key
  firedocs configure

  # Remove the stored API key
  firedocs configure --clear`,
		Args: cobra.NoArgs,
		RunE: runConfigureCmd,
	}

	cmd.Flags().Bool("clear", false, "Remove the stored API key")

	return cmd
}

// runConfigureCmd executes the configure command.
func runConfigureCmd(cmd *cobra.Command, _ []string) error {
	clearKey, err := cmd.Flags().GetBool("clear")
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if clearKey {
		if err := db.ClearCredential(ctx); err != nil {
			return fmt.Errorf("failed to clear API key: %w", err)
		}
		fmt.Fprintln(out, "API key removed.")
		return nil
	}

	prompter := ui.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
	apiKey, err := prompter.PromptCredential(ctx)
	if err != nil {
		return err
	}
	if err := db.SetCredential(ctx, apiKey); err != nil {
		return fmt.Errorf("failed to save API key: %w", err)
	}
	fmt.Fprintf(out, "API key saved to %s\n", db.Path())
	return nil
}
