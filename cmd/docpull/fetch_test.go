package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestNewFetchCmd(t *testing.T) {
	t.Parallel()

	cmd := NewFetchCmd()

	t.Run("command has correct use", func(t *testing.T) {
		t.Parallel()
		if !strings.HasPrefix(cmd.Use, "fetch") {
			t.Errorf("expected Use to start with 'fetch', got %q", cmd.Use)
		}
	})

	t.Run("requires a list file or retry-failed", func(t *testing.T) {
		t.Parallel()
		cmd := NewFetchCmd()
		cmd.SetArgs([]string{})
		err := cmd.Execute()
		if err == nil || !strings.Contains(err.Error(), "--retry-failed") {
			t.Errorf("expected usage error, got %v", err)
		}
	})

	t.Run("rejects retry-failed combined with a list file", func(t *testing.T) {
		t.Parallel()
		cmd := NewFetchCmd()
		cmd.SetArgs([]string{"--retry-failed", "urls.txt"})
		err := cmd.Execute()
		if err == nil || !strings.Contains(err.Error(), "cannot be combined") {
			t.Errorf("expected conflict error, got %v", err)
		}
	})
}

func TestReadURLList(t *testing.T) {
	t.Parallel()

	t.Run("skips blanks and comments", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "urls.txt")
		content := strings.Join([]string{
			"# frontier saved 2026-03-14",
			"",
			"https://example.com/doc/1.pdf",
			"  https://example.com/doc/2.pdf  ",
			"   ",
			"https://example.com/doc/3.pdf",
		}, "\n")
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		urls, err := readURLList(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{
			"https://example.com/doc/1.pdf",
			"https://example.com/doc/2.pdf",
			"https://example.com/doc/3.pdf",
		}
		if !reflect.DeepEqual(urls, want) {
			t.Errorf("expected %v, got %v", want, urls)
		}
	})

	t.Run("missing file returns error", func(t *testing.T) {
		t.Parallel()

		if _, err := readURLList(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
