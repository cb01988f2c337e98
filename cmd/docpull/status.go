package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/docpull/docpull/internal/model"
	"github.com/docpull/docpull/internal/store"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the download state database",
		Long: `Status summarizes the state database: how many URLs are recorded and
how many succeeded, failed, or are still pending.

Examples:
  # Show the summary
  docpull status

  # List the URLs that exhausted their retries
  docpull status --failed

  # List every recorded URL
  docpull status --all`,
		RunE: runStatusCmd,
	}

	cmd.Flags().Bool("failed", false, "List failed URLs with their last error")
	cmd.Flags().Bool("all", false, "List every recorded URL")
	addStateFlags(cmd)

	return cmd
}

// runStatusCmd executes the status command.
func runStatusCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.StateDir, store.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no state database at %s (run docpull first): %w", cfg.StateDir, err)
	}
	defer func() { _ = st.Close() }()

	ctx := cmd.Context()
	summary, err := st.Summarize(ctx)
	if err != nil {
		return fmt.Errorf("failed to summarize state database: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "State database: %s\n\n", st.Path())
	fmt.Fprintf(out, "Total URLs:  %d\n", summary.Total)
	fmt.Fprintf(out, "Success:     %d\n", summary.Success)
	fmt.Fprintf(out, "Failed:      %d\n", summary.Failed)
	fmt.Fprintf(out, "Pending:     %d\n", summary.Pending)

	showFailed, err := cmd.Flags().GetBool("failed")
	if err != nil {
		return err
	}
	showAll, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}

	switch {
	case showAll:
		records, err := st.ListAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to list records: %w", err)
		}
		printRecords(out, records)
	case showFailed:
		records, err := st.ListFailed(ctx)
		if err != nil {
			return fmt.Errorf("failed to list failed records: %w", err)
		}
		printRecords(out, records)
	}

	return nil
}

// printRecords writes a record table.
func printRecords(out io.Writer, records []*model.DownloadRecord) {
	if len(records) == 0 {
		fmt.Fprintln(out, "\nNo matching records.")
		return
	}

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STATUS\tATTEMPTS\tURL\tDETAIL")
	for _, rec := range records {
		detail := rec.Filename
		if rec.Status == model.StatusFailed {
			detail = rec.LastError
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", rec.Status, rec.Attempts, rec.URL, detail)
	}
	_ = w.Flush()
}
