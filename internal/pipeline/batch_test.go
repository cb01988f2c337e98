package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/docpull/docpull/internal/download"
)

// scriptedFetcher returns canned results per URL and tracks concurrency.
type scriptedFetcher struct {
	results map[string]*download.Result
	fatal   map[string]error

	inFlight atomic.Int32
	maxSeen  atomic.Int32
	delay    time.Duration
}

func (f *scriptedFetcher) Fetch(_ context.Context, fileURL string) (*download.Result, error) {
	current := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		max := f.maxSeen.Load()
		if current <= max || f.maxSeen.CompareAndSwap(max, current) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	if err, ok := f.fatal[fileURL]; ok {
		return nil, err
	}
	if res, ok := f.results[fileURL]; ok {
		return res, nil
	}
	return &download.Result{Outcome: download.OutcomeDownloaded}, nil
}

// TestFetchBatch verifies positional results independent of scheduling.
func TestFetchBatch(t *testing.T) {
	t.Parallel()

	urls := []string{
		"https://portal.example/doc/1.pdf",
		"https://portal.example/doc/2.pdf",
		"https://portal.example/doc/3.pdf",
	}
	fetcher := &scriptedFetcher{
		results: map[string]*download.Result{
			urls[1]: {Outcome: download.OutcomeFailed, Err: errors.New("too small")},
			urls[2]: {Outcome: download.OutcomeSkipped},
		},
	}

	results, err := FetchBatch(t.Context(), fetcher, urls, 2, discardLogger())
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Outcome != download.OutcomeDownloaded {
		t.Errorf("result 0: expected downloaded, got %s", results[0].Outcome)
	}
	if results[1].Outcome != download.OutcomeFailed {
		t.Errorf("result 1: expected failed, got %s", results[1].Outcome)
	}
	if results[2].Outcome != download.OutcomeSkipped {
		t.Errorf("result 2: expected skipped, got %s", results[2].Outcome)
	}
}

// TestFetchBatch_concurrencyLimit verifies that at most the configured
// number of fetches run at once.
func TestFetchBatch_concurrencyLimit(t *testing.T) {
	t.Parallel()

	urls := make([]string, 8)
	for i := range urls {
		urls[i] = "https://portal.example/doc/" + strings.Repeat("x", i+1) + ".pdf"
	}
	fetcher := &scriptedFetcher{delay: 10 * time.Millisecond}

	if _, err := FetchBatch(t.Context(), fetcher, urls, 2, discardLogger()); err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if max := fetcher.maxSeen.Load(); max > 2 {
		t.Errorf("expected at most 2 concurrent fetches, saw %d", max)
	}
}

// TestFetchBatch_fatalErrorAborts verifies that a store-level fault
// surfaces as the batch error.
func TestFetchBatch_fatalErrorAborts(t *testing.T) {
	t.Parallel()

	fatal := errors.New("database is locked")
	urls := []string{
		"https://portal.example/doc/1.pdf",
		"https://portal.example/doc/2.pdf",
	}
	fetcher := &scriptedFetcher{fatal: map[string]error{urls[0]: fatal}}

	if _, err := FetchBatch(t.Context(), fetcher, urls, 1, discardLogger()); !errors.Is(err, fatal) {
		t.Fatalf("expected the fatal error, got %v", err)
	}
}
