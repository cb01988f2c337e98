package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/docpull/docpull/internal/model"
	"github.com/docpull/docpull/internal/pipeline"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <start-url>",
		Short: "Discover item and file URLs without downloading",
		Long: `Crawl walks the portal's pagination and writes the discovered item and
file URL lists to timestamped text files, but downloads nothing.

The file URL list can later be fed to "docpull fetch".

Examples:
  # Discover everything a listing links to
  docpull crawl -k lawitemid https://portal.example/Laws.aspx

  # Save the lists to a specific directory
  docpull crawl -k lawitemid --output-dir ./frontier https://portal.example/Laws.aspx`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawlCmd,
	}

	addCrawlFlags(cmd)
	addStateFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
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

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(
		pipeline.NewCrawlStep(cfg, pipeline.WithCrawlLogger(logger)),
		pipeline.NewSaveFrontierStep(cfg.OutputDir, pipeline.WithSaveLogger(logger)),
	)

	rep := model.NewRunReport(cfg.StartURL)
	execErr := p.Execute(ctx, rep)

	if err := writeRunReport(cmd, rep); err != nil {
		return err
	}
	return execErr
}
