package main

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docpull/docpull/internal/config"
	"github.com/docpull/docpull/internal/model"
	"github.com/docpull/docpull/internal/pipeline"
)

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [url-list-file]",
		Short: "Download the URLs from a saved list",
		Long: `Fetch downloads every URL in a file URL list produced by "docpull crawl"
or "docpull run". One URL per line; blank lines and lines starting with
'#' are ignored.

Already-verified URLs are skipped without a network request, so a list
can be fetched repeatedly until everything succeeds.

Examples:
  # Download a saved frontier
  docpull fetch file_urls_20260314_092653.txt

  # Retry only the URLs that previously failed
  docpull fetch --retry-failed

  # Fetch 4 files at a time into a specific directory
  docpull fetch -n 4 -d ./files file_urls_20260314_092653.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: runFetchCmd,
	}

	cmd.Flags().Bool("retry-failed", false,
		"Fetch the URLs recorded as failed in the state database instead of a list file")
	cmd.Flags().StringP("extension", "e", config.DefaultFileExtension,
		"Expected file extension, used for format validation")

	addFetchFlags(cmd)
	addStateFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

// runFetchCmd executes the fetch command.
func runFetchCmd(cmd *cobra.Command, args []string) error {
	retryFailed, err := cmd.Flags().GetBool("retry-failed")
	if err != nil {
		return err
	}
	if len(args) == 0 && !retryFailed {
		return errors.New("provide a URL list file or --retry-failed")
	}
	if len(args) == 1 && retryFailed {
		return errors.New("--retry-failed cannot be combined with a URL list file")
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateFetch(); err != nil {
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

	var urls []string
	source := ""
	if retryFailed {
		records, err := st.ListFailed(ctx)
		if err != nil {
			return fmt.Errorf("failed to list failed URLs: %w", err)
		}
		for _, rec := range records {
			urls = append(urls, rec.URL)
		}
		source = "state database"
	} else {
		urls, err = readURLList(args[0])
		if err != nil {
			return err
		}
		source = args[0]
	}
	logger.Info("loaded URL list", "source", source, "count", len(urls))

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddStep(pipeline.NewFetchStep(cfg, st, pipeline.WithFetchLogger(logger)))

	rep := model.NewRunReport(source)
	rep.FileURLs = urls
	execErr := p.Execute(ctx, rep)

	if err := writeRunReport(cmd, rep); err != nil {
		return err
	}
	return execErr
}

// readURLList reads one URL per line, skipping blanks and '#' comments.
func readURLList(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided list path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open URL list: %w", err)
	}
	defer func() { _ = f.Close() }()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URL list: %w", err)
	}
	return urls, nil
}
