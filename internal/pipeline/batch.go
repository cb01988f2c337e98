package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/docpull/docpull/internal/download"
)

// Fetcher downloads one file URL. *download.Downloader satisfies it; tests
// substitute scripted fetchers.
type Fetcher interface {
	Fetch(ctx context.Context, fileURL string) (*download.Result, error)
}

// FetchBatch downloads the given URLs with at most concurrency in flight.
// Results are positionally aligned with urls, so output order never
// depends on scheduling.
//
// Design decision: errgroup.SetLimit rather than a worker pool, because
// errgroup already provides bounded concurrency and first-error
// cancellation. Per-URL download failures are inside the Results; only
// store faults and cancellation surface as the batch error.
func FetchBatch(ctx context.Context, fetcher Fetcher, urls []string, concurrency int, logger *slog.Logger) ([]*download.Result, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	logger.Info("starting fetch batch",
		"total_urls", len(urls),
		"concurrency", concurrency,
	)
	startTime := time.Now()

	results := make([]*download.Result, len(urls))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, fileURL := range urls {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			logger.Debug("fetching",
				"url", fileURL,
				"index", i+1,
				"total", len(urls),
			)

			res, err := fetcher.Fetch(ctx, fileURL)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	err := g.Wait()

	logger.Info("fetch batch complete",
		"total_urls", len(urls),
		"elapsed", time.Since(startTime),
	)
	return results, err
}
