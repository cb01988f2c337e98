package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/docpull/docpull/internal/config"
	"github.com/docpull/docpull/internal/log"
	"github.com/docpull/docpull/internal/model"
	"github.com/docpull/docpull/internal/report"
	"github.com/docpull/docpull/internal/store"
)

// addCrawlFlags registers the flags controlling crawl behavior.
func addCrawlFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("item-key", "k", "",
		"Query-string key that identifies item page links (e.g. lawitemid)")
	cmd.Flags().StringP("extension", "e", config.DefaultFileExtension,
		"Path extension that identifies file links")
	cmd.Flags().Int("max-listing-pages", config.DefaultMaxListingPages,
		"Maximum listing pages to visit (0 = unbounded)")
	cmd.Flags().Int("max-item-pages", config.DefaultMaxItemPages,
		"Maximum pages per item (0 = unbounded)")
	cmd.Flags().Duration("page-load-timeout", config.DefaultPageLoadTimeout,
		"Timeout for each page load")
	cmd.Flags().Duration("advance-timeout", config.DefaultAdvanceTimeout,
		"Timeout waiting for a page to change after a pager is triggered")
	cmd.Flags().String("output-dir", ".",
		"Directory for the item and file URL list files")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")
}

// addFetchFlags registers the flags controlling download behavior.
func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("retries", "r", config.DefaultMaxRetries,
		"Download attempts per URL before giving up")
	cmd.Flags().Float64("backoff-base", config.DefaultBackoffBase,
		"Exponential backoff base between attempts")
	cmd.Flags().Duration("backoff-cap", config.DefaultBackoffCap,
		"Maximum wait between attempts")
	cmd.Flags().DurationP("request-timeout", "t", config.DefaultRequestTimeout,
		"Timeout for each download request")
	cmd.Flags().Int64("min-size", config.DefaultMinFileSize,
		"Minimum size in bytes for a valid download")
	cmd.Flags().StringP("download-dir", "d", "",
		"Directory for downloaded files (default: XDG data dir)")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of simultaneous downloads")
}

// addStateFlags registers the config file and state directory flags.
func addStateFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .docpull in current or home directory)")
	cmd.Flags().String("state-dir", "",
		"Directory for the state database (default: XDG data dir)")
}

// addReportFlags registers the report output flags.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to the given file in addition to stdout")
}

// buildConfig creates a Config from the config file and flags.
// Precedence is defaults < file < flags: a flag only overrides the file
// when the user set it.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	configPathFlag, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = configPathFlag

	configPath := config.FindConfigFile(configPathFlag)
	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.Apply(cfg)
	} else if configPathFlag != "" {
		return nil, fmt.Errorf("configuration file not found: %s", configPathFlag)
	}

	if err := applyFlagOverrides(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlagOverrides copies explicitly set flags onto the config.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	set := func(name string, apply func() error) {
		if err != nil || !flags.Changed(name) {
			return
		}
		err = apply()
	}

	set("item-key", func() error {
		v, e := flags.GetString("item-key")
		cfg.ItemQueryKey = v
		return e
	})
	set("extension", func() error {
		v, e := flags.GetString("extension")
		cfg.FileExtension = v
		return e
	})
	set("max-listing-pages", func() error {
		v, e := flags.GetInt("max-listing-pages")
		cfg.MaxListingPages = v
		return e
	})
	set("max-item-pages", func() error {
		v, e := flags.GetInt("max-item-pages")
		cfg.MaxItemPages = v
		return e
	})
	set("page-load-timeout", func() error {
		v, e := flags.GetDuration("page-load-timeout")
		cfg.PageLoadTimeout = v
		return e
	})
	set("advance-timeout", func() error {
		v, e := flags.GetDuration("advance-timeout")
		cfg.AdvanceTimeout = v
		return e
	})
	set("output-dir", func() error {
		v, e := flags.GetString("output-dir")
		cfg.OutputDir = v
		return e
	})
	set("user-agent", func() error {
		v, e := flags.GetString("user-agent")
		cfg.UserAgent = v
		return e
	})
	set("retries", func() error {
		v, e := flags.GetInt("retries")
		cfg.MaxRetries = v
		return e
	})
	set("backoff-base", func() error {
		v, e := flags.GetFloat64("backoff-base")
		cfg.BackoffBase = v
		return e
	})
	set("backoff-cap", func() error {
		v, e := flags.GetDuration("backoff-cap")
		cfg.BackoffCap = v
		return e
	})
	set("request-timeout", func() error {
		v, e := flags.GetDuration("request-timeout")
		cfg.RequestTimeout = v
		return e
	})
	set("min-size", func() error {
		v, e := flags.GetInt64("min-size")
		cfg.MinFileSize = v
		return e
	})
	set("download-dir", func() error {
		v, e := flags.GetString("download-dir")
		cfg.DownloadDir = v
		return e
	})
	set("concurrency", func() error {
		v, e := flags.GetInt("concurrency")
		cfg.Concurrency = v
		return e
	})
	set("state-dir", func() error {
		v, e := flags.GetString("state-dir")
		cfg.StateDir = v
		return e
	})

	return err
}

// getVerboseFlag retrieves the verbose flag from the command or its
// parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the structured logger for a run. Verbose enables
// debug output; attribute values are truncated so a pathological URL
// cannot flood the terminal.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewLogger(os.Stderr, verbose)
}

// openStore opens the state database, creating its directory if needed.
func openStore(cfg *config.Config) (*store.Store, error) {
	if err := os.MkdirAll(cfg.StateDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	st, err := store.Open(cfg.StateDir, store.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	return st, nil
}

// writeRunReport renders the report to stdout and, when requested, to a
// file in the same format.
func writeRunReport(cmd *cobra.Command, rep *model.RunReport) error {
	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOut, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOut && markdownOut {
		return fmt.Errorf("--json and --markdown are mutually exclusive")
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	newWriter := func(w io.Writer) report.Writer {
		switch {
		case jsonOut:
			return report.NewJSONWriter(w, report.WithPrettyPrint())
		case markdownOut:
			return report.NewMarkdownWriter(w)
		default:
			return report.NewSimpleWriter(w, report.WithVerbose(getVerboseFlag(cmd)))
		}
	}

	writers := []report.Writer{newWriter(cmd.OutOrStdout())}
	if outputPath != "" {
		if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer func() { _ = f.Close() }()
		writers = append(writers, newWriter(f))
	}

	if _, err := report.NewMultiWriter(writers...).Write(rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
