package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"resty.dev/v3"

	"github.com/docpull/docpull/internal/config"
	"github.com/docpull/docpull/internal/store"
)

// Outcome classifies what Fetch did with one URL.
type Outcome int

const (
	// OutcomeDownloaded means the file was fetched and verified this run.
	OutcomeDownloaded Outcome = iota

	// OutcomeSkipped means the store already records a verified download
	// and the file is present on disk; no network request was made.
	OutcomeSkipped

	// OutcomeFailed means every attempt failed; the last error is in the
	// Result and in the store.
	OutcomeFailed
)

// String returns the outcome for logs and reports.
func (o Outcome) String() string {
	switch o {
	case OutcomeDownloaded:
		return "downloaded"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the per-URL outcome of Fetch.
type Result struct {
	// Outcome says whether the URL was downloaded, skipped, or failed.
	Outcome Outcome

	// Filename is the local filename, set for downloaded and skipped URLs.
	Filename string

	// Err is the last attempt's error when Outcome is OutcomeFailed.
	Err error
}

// sleepFunc waits for the given duration or until the context ends.
// Injected in tests so backoff schedules can be observed without waiting.
type sleepFunc func(ctx context.Context, d time.Duration) error

// Downloader fetches file URLs with retry, validation, and durable
// idempotency through the state store.
type Downloader struct {
	client *resty.Client
	store  *store.Store

	downloadDir         string
	extension           string
	minFileSize         int64
	allowedContentTypes []string
	maxRetries          int
	backoffBase         float64
	backoffCap          time.Duration

	logger *slog.Logger
	sleep  sleepFunc
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Downloader) {
		d.logger = logger
	}
}

// WithSleep replaces the inter-attempt wait. Tests use this to record the
// backoff schedule instead of sleeping through it.
func WithSleep(sleep sleepFunc) Option {
	return func(d *Downloader) {
		d.sleep = sleep
	}
}

// New creates a Downloader writing to cfg.DownloadDir and recording state
// in st. The caller owns st; Close releases only the HTTP client.
func New(cfg *config.Config, st *store.Store, opts ...Option) *Downloader {
	client := resty.New().
		SetTimeout(cfg.RequestTimeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetDoNotParseResponse(true)

	d := &Downloader{
		client:              client,
		store:               st,
		downloadDir:         cfg.DownloadDir,
		extension:           cfg.FileExtension,
		minFileSize:         cfg.MinFileSize,
		allowedContentTypes: cfg.AllowedContentTypes,
		maxRetries:          cfg.MaxRetries,
		backoffBase:         cfg.BackoffBase,
		backoffCap:          cfg.BackoffCap,
		sleep:               sleepContext,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Close releases the HTTP client.
func (d *Downloader) Close() error {
	return d.client.Close()
}

// Fetch downloads one URL through the full verify-and-record lifecycle.
// The returned error is non-nil only for store failures or context
// cancellation; attempt failures are retried and, once exhausted,
// reported through the Result so one bad URL never stops a batch.
func (d *Downloader) Fetch(ctx context.Context, fileURL string) (*Result, error) {
	if res, ok, err := d.alreadyDone(ctx, fileURL); err != nil {
		return nil, err
	} else if ok {
		d.logger.Debug("already downloaded", "url", fileURL, "filename", res.Filename)
		return res, nil
	}

	var lastErr error
	for attempt := 1; attempt <= d.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Record the attempt before touching the network so a crash
		// mid-fetch leaves visible evidence in the store.
		if err := d.store.MarkAttempt(ctx, fileURL); err != nil {
			return nil, err
		}

		meta, err := d.attempt(ctx, fileURL)
		if err == nil {
			if err := d.store.MarkSuccess(ctx, fileURL, *meta); err != nil {
				return nil, err
			}
			d.logger.Info("downloaded",
				"url", fileURL,
				"filename", meta.Filename,
				"size_bytes", meta.SizeBytes,
				"attempt", attempt,
			)
			return &Result{Outcome: OutcomeDownloaded, Filename: meta.Filename}, nil
		}

		lastErr = err
		if markErr := d.store.MarkFailure(ctx, fileURL, err.Error(), httpStatusOf(err)); markErr != nil {
			return nil, markErr
		}
		d.logger.Warn("download attempt failed",
			"url", fileURL,
			"attempt", attempt,
			"max_retries", d.maxRetries,
			"error", err,
		)

		if attempt < d.maxRetries {
			if err := d.sleep(ctx, backoffDelay(d.backoffBase, attempt, d.backoffCap)); err != nil {
				return nil, err
			}
		}
	}

	return &Result{Outcome: OutcomeFailed, Err: lastErr}, nil
}

// alreadyDone reports whether the URL is verified in the store with its
// file still present on disk.
func (d *Downloader) alreadyDone(ctx context.Context, fileURL string) (*Result, bool, error) {
	done, err := d.store.IsSuccess(ctx, fileURL)
	if err != nil {
		return nil, false, err
	}
	if !done {
		return nil, false, nil
	}

	rec, err := d.store.Get(ctx, fileURL)
	if err != nil {
		return nil, false, err
	}
	if rec == nil || rec.Filename == "" {
		return nil, false, nil
	}
	if _, err := os.Stat(filepath.Join(d.downloadDir, rec.Filename)); err != nil {
		// The record says success but the file is gone; re-fetch.
		return nil, false, nil
	}
	return &Result{Outcome: OutcomeSkipped, Filename: rec.Filename}, true, nil
}

// attempt performs one fetch-validate-install cycle. Any returned error
// is retryable.
func (d *Downloader) attempt(ctx context.Context, fileURL string) (*store.SuccessMeta, error) {
	if err := os.MkdirAll(d.downloadDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	resp, err := d.client.R().SetContext(ctx).Get(fileURL)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode() >= 400 {
		return nil, &HTTPError{StatusCode: resp.StatusCode()}
	}

	contentType := resp.Header().Get("Content-Type")
	if err := checkContentType(contentType, d.allowedContentTypes); err != nil {
		return nil, err
	}

	filename := DeriveFilename(fileURL, d.extension)
	tempPath := filepath.Join(d.downloadDir, "."+filename+".tmp-"+uuid.NewString())

	size, checksum, err := streamToFile(tempPath, resp.Body)
	if err != nil {
		return nil, err
	}

	magic := magicForExtension(d.extension)
	head, err := readLeadingBytes(tempPath, len(magic))
	if err != nil {
		_ = os.Remove(tempPath)
		return nil, err
	}
	if err := validateBody(size, d.minFileSize, head, magic); err != nil {
		_ = os.Remove(tempPath)
		return nil, err
	}

	if err := os.Rename(tempPath, filepath.Join(d.downloadDir, filename)); err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("failed to install file: %w", err)
	}

	return &store.SuccessMeta{
		Filename:    filename,
		SizeBytes:   size,
		Checksum:    checksum,
		ContentType: contentType,
		HTTPStatus:  resp.StatusCode(),
	}, nil
}

// streamToFile copies body to path while hashing it, returning the byte
// count and hex SHA-256. The partial file is removed on any error.
func streamToFile(path string, body io.Reader) (int64, string, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, "", fmt.Errorf("failed to create temp file: %w", err)
	}

	h := sha256.New()
	size, copyErr := io.Copy(io.MultiWriter(f, h), body)
	closeErr := f.Close()
	if copyErr != nil {
		_ = os.Remove(path)
		return 0, "", fmt.Errorf("failed to stream response body: %w", copyErr)
	}
	if closeErr != nil {
		_ = os.Remove(path)
		return 0, "", fmt.Errorf("failed to close temp file: %w", closeErr)
	}
	return size, hex.EncodeToString(h.Sum(nil)), nil
}

// readLeadingBytes returns up to n leading bytes of the file at path.
func readLeadingBytes(path string, n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to reopen temp file: %w", err)
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, n)
	read, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read file head: %w", err)
	}
	return head[:read], nil
}

// backoffDelay is the wait before the next attempt: base^attempt seconds,
// bounded by limit. The schedule is non-decreasing by construction.
func backoffDelay(base float64, attempt int, limit time.Duration) time.Duration {
	delay := time.Duration(math.Pow(base, float64(attempt)) * float64(time.Second))
	if delay < 0 || delay > limit {
		return limit
	}
	return delay
}

// httpStatusOf extracts the HTTP status from an attempt error, or 0 for
// transport and validation failures.
func httpStatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// sleepContext waits for d or until ctx ends.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
