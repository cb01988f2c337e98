package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for docpull.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docpull",
		Short: "Crawl paginated document portals and download their files",
		Long: `docpull walks a paginated listing page, follows every item page it links
to, harvests downloadable file links across each item's own pagination,
and downloads the files with validation, retries, and a persistent state
database that makes re-runs resume instead of repeat.

It is built for server-rendered portals whose pagers navigate through
hidden form postbacks rather than plain links.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewFetchCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
