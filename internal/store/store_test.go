package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/docpull/docpull/internal/model"
)

// setupTestStore creates a temporary store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// TestOpen tests store opening and creation behavior.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "state", "nested")
		s, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}
		defer s.Close()

		if _, err := os.Stat(filepath.Join(dir, DBFileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("CreateIfNotExists=false fails on missing database", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{CreateIfNotExists: false, EnableWAL: true})
		if err == nil {
			t.Fatal("expected error for missing database")
		}
	})

	t.Run("reopening is idempotent", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		s1, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("first open: %v", err)
		}
		if err := s1.MarkAttempt(t.Context(), "https://example.com/a.pdf"); err != nil {
			t.Fatalf("mark attempt: %v", err)
		}
		_ = s1.Close()

		s2, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("second open: %v", err)
		}
		defer s2.Close()

		rec, err := s2.Get(t.Context(), "https://example.com/a.pdf")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if rec == nil || rec.Attempts != 1 {
			t.Errorf("record lost across reopen: %+v", rec)
		}
	})
}

// TestMarkAttempt verifies attempt counting and the pending transition.
func TestMarkAttempt(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	url := "https://portal.example/doc.pdf"

	for i := 1; i <= 3; i++ {
		if err := s.MarkAttempt(t.Context(), url); err != nil {
			t.Fatalf("MarkAttempt #%d: %v", i, err)
		}
		rec, err := s.Get(t.Context(), url)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if rec.Attempts != i {
			t.Errorf("Attempts = %d, want %d", rec.Attempts, i)
		}
		if rec.Status != model.StatusPending {
			t.Errorf("Status = %v, want pending", rec.Status)
		}
		if rec.LastAttemptAt.IsZero() {
			t.Error("LastAttemptAt not stamped")
		}
	}
}

// TestMarkSuccess verifies metadata recording and idempotency.
func TestMarkSuccess(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	url := "https://portal.example/doc.pdf"
	ctx := t.Context()

	// Typical flow: attempt, failure, attempt, success.
	if err := s.MarkAttempt(ctx, url); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkFailure(ctx, url, "HTTP 503", 503); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkAttempt(ctx, url); err != nil {
		t.Fatal(err)
	}

	meta := SuccessMeta{
		Filename:    "/data/doc.pdf",
		SizeBytes:   40960,
		Checksum:    "ab12",
		ContentType: "application/pdf",
		HTTPStatus:  200,
	}
	if err := s.MarkSuccess(ctx, url, meta); err != nil {
		t.Fatal(err)
	}

	rec, err := s.Get(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != model.StatusSuccess {
		t.Errorf("Status = %v, want success", rec.Status)
	}
	if rec.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", rec.Attempts)
	}
	if rec.LastError != "" {
		t.Errorf("LastError = %q, want cleared", rec.LastError)
	}
	if rec.Filename != meta.Filename || rec.SizeBytes != meta.SizeBytes || rec.Checksum != meta.Checksum {
		t.Errorf("metadata mismatch: %+v", rec)
	}
	if rec.HTTPStatus != 200 {
		t.Errorf("HTTPStatus = %d, want 200", rec.HTTPStatus)
	}

	// Re-marking success refreshes metadata without bumping attempts.
	meta.SizeBytes = 50000
	if err := s.MarkSuccess(ctx, url, meta); err != nil {
		t.Fatal(err)
	}
	rec, err = s.Get(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Attempts != 2 {
		t.Errorf("Attempts after re-success = %d, want unchanged 2", rec.Attempts)
	}
	if rec.SizeBytes != 50000 {
		t.Errorf("SizeBytes = %d, want refreshed 50000", rec.SizeBytes)
	}
}

// TestMarkFailure verifies error truncation and HTTP status preservation.
func TestMarkFailure(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := t.Context()
	url := "https://portal.example/broken.pdf"

	t.Run("stores truncated error", func(t *testing.T) {
		long := make([]byte, model.MaxErrorLength+1000)
		for i := range long {
			long[i] = 'e'
		}
		if err := s.MarkFailure(ctx, url, string(long), 500); err != nil {
			t.Fatal(err)
		}

		rec, err := s.Get(ctx, url)
		if err != nil {
			t.Fatal(err)
		}
		if len(rec.LastError) != model.MaxErrorLength {
			t.Errorf("LastError length = %d, want %d", len(rec.LastError), model.MaxErrorLength)
		}
		if rec.Status != model.StatusFailed {
			t.Errorf("Status = %v, want failed", rec.Status)
		}
	})

	t.Run("zero status preserves previous HTTP status", func(t *testing.T) {
		if err := s.MarkFailure(ctx, url, "connection reset", 0); err != nil {
			t.Fatal(err)
		}
		rec, err := s.Get(ctx, url)
		if err != nil {
			t.Fatal(err)
		}
		if rec.HTTPStatus != 500 {
			t.Errorf("HTTPStatus = %d, want preserved 500", rec.HTTPStatus)
		}
		if rec.LastError != "connection reset" {
			t.Errorf("LastError = %q", rec.LastError)
		}
	})
}

// TestIsSuccess verifies the idempotency check used by the downloader.
func TestIsSuccess(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := t.Context()
	url := "https://portal.example/doc.pdf"

	ok, err := s.IsSuccess(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("IsSuccess true for unknown URL")
	}

	if err := s.MarkFailure(ctx, url, "HTTP 404", 404); err != nil {
		t.Fatal(err)
	}
	if ok, _ = s.IsSuccess(ctx, url); ok {
		t.Error("IsSuccess true for failed URL")
	}

	if err := s.MarkSuccess(ctx, url, SuccessMeta{Filename: "f"}); err != nil {
		t.Fatal(err)
	}
	if ok, _ = s.IsSuccess(ctx, url); !ok {
		t.Error("IsSuccess false after MarkSuccess")
	}
}

// TestSummarizeAndList verifies the inspection helpers.
func TestSummarizeAndList(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := t.Context()

	if err := s.MarkSuccess(ctx, "https://a.example/1.pdf", SuccessMeta{Filename: "1.pdf"}); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkSuccess(ctx, "https://a.example/2.pdf", SuccessMeta{Filename: "2.pdf"}); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkFailure(ctx, "https://a.example/z.pdf", "HTTP 503", 503); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkFailure(ctx, "https://a.example/b.pdf", "not a valid file", 200); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkAttempt(ctx, "https://a.example/p.pdf"); err != nil {
		t.Fatal(err)
	}

	sum, err := s.Summarize(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Total != 5 || sum.Success != 2 || sum.Failed != 2 || sum.Pending != 1 {
		t.Errorf("Summarize() = %+v", sum)
	}

	failed, err := s.ListFailed(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(failed) != 2 {
		t.Fatalf("ListFailed() returned %d records, want 2", len(failed))
	}
	// Ordered by URL.
	if failed[0].URL != "https://a.example/b.pdf" || failed[1].URL != "https://a.example/z.pdf" {
		t.Errorf("ListFailed order: %q, %q", failed[0].URL, failed[1].URL)
	}

	all, err := s.ListAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 5 {
		t.Errorf("ListAll() returned %d records, want 5", len(all))
	}
}
