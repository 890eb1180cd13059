package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/firedocs/internal/firecrawl"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show the status of a remote crawl job",
		Long: `Status asks Firecrawl for the state of a crawl job. Job IDs are shown by
'firedocs history -v'.`,
		Args: cobra.ExactArgs(1),
		RunE: runStatusCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Output JSON")

	return cmd
}

// jobSummary is the status of a job without its page data.
type jobSummary struct {
	ID          string              `json:"id"`
	Status      firecrawl.JobStatus `json:"status"`
	Completed   int                 `json:"completed"`
	Total       int                 `json:"total"`
	CreditsUsed int                 `json:"credits_used"`
	ExpiresAt   *time.Time          `json:"expires_at,omitempty"`
	Pages       int                 `json:"pages"`
}

// runStatusCmd executes the status command.
func runStatusCmd(cmd *cobra.Command, args []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd)

	client, err := newStoredClient(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	st, err := client.CheckStatus(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get job status: %w", err)
	}

	summary := jobSummary{
		ID:          args[0],
		Status:      st.Status,
		Completed:   st.Completed,
		Total:       st.Total,
		CreditsUsed: st.CreditsUsed,
		Pages:       len(st.Data),
	}
	if !st.ExpiresAt.IsZero() {
		summary.ExpiresAt = &st.ExpiresAt
	}

	out := cmd.OutOrStdout()
	if asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(summary)
	}

	fmt.Fprintf(out, "Job:          %s\n", summary.ID)
	fmt.Fprintf(out, "Status:       %s\n", summary.Status)
	fmt.Fprintf(out, "Progress:     %d/%d pages\n", summary.Completed, summary.Total)
	fmt.Fprintf(out, "Credits used: %d\n", summary.CreditsUsed)
	if summary.ExpiresAt != nil {
		fmt.Fprintf(out, "Expires:      %s\n", summary.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

// NewCancelCmd creates the cancel command.
func NewCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <job-id>",
		Short: "Cancel a remote crawl job",
		Long: `Cancel stops a crawl job on the Firecrawl side. Pages already returned by
the job are not affected.`,
		Args: cobra.ExactArgs(1),
		RunE: runCancelCmd,
	}
}

// runCancelCmd executes the cancel command.
func runCancelCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd)

	client, err := newStoredClient(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	if err := client.Cancel(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to cancel job: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cancelled job %s\n", args[0])
	return nil
}
