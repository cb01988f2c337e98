package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docpull/docpull/internal/model"
	"github.com/docpull/docpull/internal/pipeline"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <start-url>",
		Short: "Crawl a portal and download every discovered file",
		Long: `Run performs the full docpull lifecycle against a portal listing page:

1. Crawl the listing's pagination and collect item page URLs
2. Visit each item page, paginate through it, and collect file URLs
3. Save both URL lists to timestamped text files
4. Download, validate, and record every file

Re-running is safe: verified downloads are skipped, failed ones retried.

Examples:
  # Crawl a listing and download every PDF its items link to
  docpull run -k lawitemid https://portal.example/Laws.aspx

  # Limit the listing to 5 pages and download 4 files at a time
  docpull run -k lawitemid --max-listing-pages 5 -n 4 https://portal.example/Laws.aspx

  # Use a configuration file and write a JSON report
  docpull run -c portal.yaml -j -o report.json https://portal.example/Laws.aspx`,
		Args: cobra.ExactArgs(1),
		RunE: runRunCmd,
	}

	addCrawlFlags(cmd)
	addFetchFlags(cmd)
	addStateFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	cfg.StartURL = args[0]
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(
		pipeline.NewCrawlStep(cfg, pipeline.WithCrawlLogger(logger)),
		pipeline.NewSaveFrontierStep(cfg.OutputDir, pipeline.WithSaveLogger(logger)),
		pipeline.NewFetchStep(cfg, st, pipeline.WithFetchLogger(logger)),
	)

	rep := model.NewRunReport(cfg.StartURL)
	execErr := p.Execute(ctx, rep)

	if err := writeRunReport(cmd, rep); err != nil {
		return err
	}
	return execErr
}

// signalContext returns a context cancelled by SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}
