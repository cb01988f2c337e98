package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/docpull/docpull/internal/config"
	"github.com/docpull/docpull/internal/model"
)

// newFlagCmd builds a command carrying the full flag surface, like the
// run command does.
func newFlagCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	addCrawlFlags(cmd)
	addFetchFlags(cmd)
	addStateFlags(cmd)
	addReportFlags(cmd)
	return cmd
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults when no file and no flags", func(t *testing.T) {
		t.Parallel()

		cmd := newFlagCmd()
		if err := cmd.ParseFlags([]string{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.MaxRetries != config.DefaultMaxRetries {
			t.Errorf("expected default retries %d, got %d", config.DefaultMaxRetries, cfg.MaxRetries)
		}
		if cfg.FileExtension != config.DefaultFileExtension {
			t.Errorf("expected default extension %q, got %q", config.DefaultFileExtension, cfg.FileExtension)
		}
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".docpull")
		content := strings.Join([]string{
			"item_query_key: lawitemid",
			"max_retries: 9",
			"request_timeout: 45s",
		}, "\n")
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		cmd := newFlagCmd()
		if err := cmd.ParseFlags([]string{"--config", path}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.ItemQueryKey != "lawitemid" {
			t.Errorf("expected item key from file, got %q", cfg.ItemQueryKey)
		}
		if cfg.MaxRetries != 9 {
			t.Errorf("expected retries from file, got %d", cfg.MaxRetries)
		}
		if cfg.RequestTimeout != 45*time.Second {
			t.Errorf("expected request timeout from file, got %v", cfg.RequestTimeout)
		}
	})

	t.Run("explicit flag overrides file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".docpull")
		if err := os.WriteFile(path, []byte("max_retries: 9\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		cmd := newFlagCmd()
		if err := cmd.ParseFlags([]string{"--config", path, "--retries", "2"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.MaxRetries != 2 {
			t.Errorf("expected flag to win over file, got %d", cfg.MaxRetries)
		}
	})

	t.Run("unset flag does not clobber file value", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".docpull")
		if err := os.WriteFile(path, []byte("concurrency: 7\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		cmd := newFlagCmd()
		if err := cmd.ParseFlags([]string{"--config", path}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Concurrency != 7 {
			t.Errorf("expected file value to survive flag defaults, got %d", cfg.Concurrency)
		}
	})

	t.Run("missing explicit config file is an error", func(t *testing.T) {
		t.Parallel()

		cmd := newFlagCmd()
		missing := filepath.Join(t.TempDir(), "nope.yaml")
		if err := cmd.ParseFlags([]string{"--config", missing}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := buildConfig(cmd); err == nil {
			t.Error("expected error for missing explicit config file")
		}
	})
}

func TestWriteRunReport(t *testing.T) {
	t.Parallel()

	t.Run("json and markdown are mutually exclusive", func(t *testing.T) {
		t.Parallel()

		cmd := newFlagCmd()
		if err := cmd.ParseFlags([]string{"--json", "--markdown"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := writeRunReport(cmd, model.NewRunReport("https://example.com")); err == nil {
			t.Error("expected error for --json with --markdown")
		}
	})

	t.Run("writes simple report to stdout", func(t *testing.T) {
		t.Parallel()

		cmd := newFlagCmd()
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		if err := cmd.ParseFlags([]string{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := writeRunReport(cmd, model.NewRunReport("https://example.com")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "https://example.com") {
			t.Errorf("expected report to mention the start URL, got %q", buf.String())
		}
	})

	t.Run("duplicates the report to a file", func(t *testing.T) {
		t.Parallel()

		outPath := filepath.Join(t.TempDir(), "reports", "run.json")
		cmd := newFlagCmd()
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		if err := cmd.ParseFlags([]string{"--json", "--output", outPath}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := writeRunReport(cmd, model.NewRunReport("https://example.com")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(outPath) //nolint:gosec
		if err != nil {
			t.Fatalf("expected report file to exist: %v", err)
		}
		if string(data) != buf.String() {
			t.Error("expected the file copy to match stdout")
		}
	})
}
