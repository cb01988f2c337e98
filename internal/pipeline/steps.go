package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docpull/docpull/internal/browser"
	"github.com/docpull/docpull/internal/config"
	"github.com/docpull/docpull/internal/download"
	"github.com/docpull/docpull/internal/model"
	"github.com/docpull/docpull/internal/navigator"
	"github.com/docpull/docpull/internal/store"
)

// Crawler discovers item and file URLs from a start page.
// *navigator.Navigator satisfies it.
type Crawler interface {
	Crawl(ctx context.Context, startURL string, itemPred, filePred model.LinkPredicate) (*navigator.Result, error)
}

// CrawlStep runs the two-level crawl and records the discovered frontier
// in the report.
type CrawlStep struct {
	// cfg supplies the start URL, predicates, timeouts, and page caps.
	cfg *config.Config

	// newCrawler builds a fresh crawler per execution. A navigator owns
	// its browser session and is single-use, so the step cannot hold one.
	newCrawler func() Crawler

	// logger for structured logging.
	logger *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// WithCrawlerFactory replaces how the step obtains its crawler. Tests use
// this to crawl a scripted frontier without a network.
func WithCrawlerFactory(factory func() Crawler) CrawlStepOption {
	return func(s *CrawlStep) {
		s.newCrawler = factory
	}
}

// NewCrawlStep creates the crawl step.
func NewCrawlStep(cfg *config.Config, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.newCrawler == nil {
		s.newCrawler = s.defaultCrawler
	}
	return s
}

// defaultCrawler wires a navigator over a fresh static browser session.
func (s *CrawlStep) defaultCrawler() Crawler {
	b := browser.NewStatic(
		browser.WithUserAgent(s.cfg.UserAgent),
		browser.WithPageLoadTimeout(s.cfg.PageLoadTimeout),
	)
	return navigator.New(b, s.cfg.LocateTimeout, s.cfg.AdvanceTimeout,
		navigator.WithLogger(s.logger),
		navigator.WithPageCaps(s.cfg.MaxListingPages, s.cfg.MaxItemPages),
	)
}

// Name returns the step name.
func (s *CrawlStep) Name() string { return "crawl" }

// Do runs the crawl and fills the report's frontier fields.
func (s *CrawlStep) Do(ctx context.Context, report *model.RunReport) error {
	startTime := time.Now()

	result, err := s.newCrawler().Crawl(ctx, s.cfg.StartURL,
		model.QueryKeyPredicate(s.cfg.ItemQueryKey),
		model.ExtensionPredicate(s.cfg.FileExtension),
	)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	report.ItemURLs = result.ItemURLs
	report.FileURLs = result.FileURLs
	report.ListingPages = result.ListingPages
	report.CrawlDuration = time.Since(startTime)

	for _, f := range result.ItemFailures {
		s.logger.Warn("item page skipped", "url", f.URL, "error", f.Err)
	}
	s.logger.Info("crawl complete",
		"listing_pages", result.ListingPages,
		"item_urls", len(result.ItemURLs),
		"file_urls", len(result.FileURLs),
		"skipped_items", len(result.ItemFailures),
		"elapsed", report.CrawlDuration,
	)
	return nil
}

// frontierTimestampFormat timestamps frontier filenames so successive runs
// never overwrite each other.
const frontierTimestampFormat = "20060102_150405"

// SaveFrontierStep writes the discovered URLs to timestamped text files,
// one URL per line, sorted.
type SaveFrontierStep struct {
	// outputDir is where the frontier files are written.
	outputDir string

	// now is the clock for filenames, replaceable in tests.
	now func() time.Time

	// logger for structured logging.
	logger *slog.Logger
}

// SaveFrontierStepOption configures a SaveFrontierStep.
type SaveFrontierStepOption func(*SaveFrontierStep)

// WithSaveLogger sets a custom logger for the save step.
func WithSaveLogger(logger *slog.Logger) SaveFrontierStepOption {
	return func(s *SaveFrontierStep) {
		s.logger = logger
	}
}

// WithSaveClock replaces the filename clock.
func WithSaveClock(now func() time.Time) SaveFrontierStepOption {
	return func(s *SaveFrontierStep) {
		s.now = now
	}
}

// NewSaveFrontierStep creates the save step.
func NewSaveFrontierStep(outputDir string, opts ...SaveFrontierStepOption) *SaveFrontierStep {
	s := &SaveFrontierStep{
		outputDir: outputDir,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *SaveFrontierStep) Name() string { return "save_frontier" }

// Do writes the item and file URL lists. Empty lists are skipped so a
// crawl that found nothing leaves no misleading empty files.
func (s *SaveFrontierStep) Do(_ context.Context, report *model.RunReport) error {
	if err := os.MkdirAll(s.outputDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	timestamp := s.now().UTC().Format(frontierTimestampFormat)

	if len(report.ItemURLs) > 0 {
		path := filepath.Join(s.outputDir, "item_urls_"+timestamp+".txt")
		if err := writeLines(path, report.ItemURLs); err != nil {
			return err
		}
		report.ItemURLFile = path
		s.logger.Info("saved item URLs", "path", path, "count", len(report.ItemURLs))
	}
	if len(report.FileURLs) > 0 {
		path := filepath.Join(s.outputDir, "file_urls_"+timestamp+".txt")
		if err := writeLines(path, report.FileURLs); err != nil {
			return err
		}
		report.FileURLFile = path
		s.logger.Info("saved file URLs", "path", path, "count", len(report.FileURLs))
	}
	return nil
}

// writeLines writes one value per line with a trailing newline.
func writeLines(path string, lines []string) error {
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// FetchStep downloads the file URLs discovered by the crawl step.
type FetchStep struct {
	// cfg supplies retry, validation, and concurrency settings.
	cfg *config.Config

	// store records per-URL download state.
	store *store.Store

	// newFetcher builds the fetcher and its release function per
	// execution.
	newFetcher func() (Fetcher, func() error)

	// logger for structured logging.
	logger *slog.Logger
}

// FetchStepOption configures a FetchStep.
type FetchStepOption func(*FetchStep)

// WithFetchLogger sets a custom logger for the fetch step.
func WithFetchLogger(logger *slog.Logger) FetchStepOption {
	return func(s *FetchStep) {
		s.logger = logger
	}
}

// WithFetcherFactory replaces how the step obtains its fetcher. Tests use
// this to run the batch against scripted outcomes.
func WithFetcherFactory(factory func() (Fetcher, func() error)) FetchStepOption {
	return func(s *FetchStep) {
		s.newFetcher = factory
	}
}

// NewFetchStep creates the fetch step.
func NewFetchStep(cfg *config.Config, st *store.Store, opts ...FetchStepOption) *FetchStep {
	s := &FetchStep{
		cfg:    cfg,
		store:  st,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.newFetcher == nil {
		s.newFetcher = func() (Fetcher, func() error) {
			d := download.New(s.cfg, s.store, download.WithLogger(s.logger))
			return d, d.Close
		}
	}
	return s
}

// Name returns the step name.
func (s *FetchStep) Name() string { return "fetch" }

// Do fetches every file URL in the report and tallies the outcomes.
// Per-URL failures are recorded in the report; only store faults and
// cancellation fail the step.
func (s *FetchStep) Do(ctx context.Context, report *model.RunReport) error {
	if len(report.FileURLs) == 0 {
		s.logger.Info("no file URLs to fetch")
		return nil
	}

	fetcher, release := s.newFetcher()
	defer func() {
		if err := release(); err != nil {
			s.logger.Warn("failed to release fetcher", "error", err)
		}
	}()

	startTime := time.Now()
	results, err := FetchBatch(ctx, fetcher, report.FileURLs, s.cfg.Concurrency, s.logger)

	for i, res := range results {
		if res == nil {
			continue
		}
		switch res.Outcome {
		case download.OutcomeDownloaded:
			report.Downloaded++
		case download.OutcomeSkipped:
			report.Skipped++
		case download.OutcomeFailed:
			report.Failed++
			lastError := ""
			if res.Err != nil {
				lastError = res.Err.Error()
			}
			report.AddFailure(report.FileURLs[i], lastError)
		}
	}
	report.FetchDuration = time.Since(startTime)

	s.logger.Info("fetch complete",
		"downloaded", report.Downloaded,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"elapsed", report.FetchDuration,
	)
	if err != nil {
		return fmt.Errorf("fetch batch aborted: %w", err)
	}
	return nil
}
