package navigator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/docpull/docpull/internal/browser"
	"github.com/docpull/docpull/internal/model"
)

// ExhaustReason says why a pagination scope terminated. Exhaustion is the
// expected end state of every scope, so it is reported as data, not error.
type ExhaustReason int

const (
	// ExhaustLoop means the current page's signature was already seen in
	// this scope: the pager wrapped around or stopped moving.
	ExhaustLoop ExhaustReason = iota

	// ExhaustPageCap means the scope's configured page cap was reached.
	ExhaustPageCap

	// ExhaustNoAdvance means every advance strategy failed, or the
	// post-advance signature equaled the pre-advance one.
	ExhaustNoAdvance

	// ExhaustCancelled means the context was cancelled mid-scope.
	ExhaustCancelled
)

// String returns the reason for logs.
func (r ExhaustReason) String() string {
	switch r {
	case ExhaustLoop:
		return "signature repeated"
	case ExhaustPageCap:
		return "page cap reached"
	case ExhaustNoAdvance:
		return "no advance strategy succeeded"
	case ExhaustCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Navigator drives one browser session through multi-level pagination.
// It owns the session for the duration of a Crawl and releases it on
// every exit path.
type Navigator struct {
	// browser is the navigation session, exclusively owned.
	browser browser.Browser

	// strategies is the ordered advance-strategy chain.
	strategies []AdvanceStrategy

	// maxListingPages and maxItemPages are per-scope caps. 0 = unbounded.
	maxListingPages int
	maxItemPages    int

	// logger for structured progress output.
	logger *slog.Logger
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Navigator) {
		n.logger = logger
	}
}

// WithStrategies replaces the advance-strategy chain. Order matters:
// strategies are tried first to last on every advance.
func WithStrategies(strategies ...AdvanceStrategy) Option {
	return func(n *Navigator) {
		n.strategies = strategies
	}
}

// WithPageCaps sets the listing and per-item page caps. 0 = unbounded.
func WithPageCaps(listing, item int) Option {
	return func(n *Navigator) {
		n.maxListingPages = listing
		n.maxItemPages = item
	}
}

// New creates a Navigator owning the given browser session.
// The default strategy chain is scoped next control, page-scope next
// control, then hidden postback submission, with the given locate and
// confirmation windows.
func New(b browser.Browser, locateTimeout, confirmTimeout time.Duration, opts ...Option) *Navigator {
	n := &Navigator{
		browser: b,
		strategies: []AdvanceStrategy{
			NewScopedNextStrategy(locateTimeout, confirmTimeout),
			NewPageNextStrategy(locateTimeout, confirmTimeout),
			NewPostBackStrategy(confirmTimeout),
		},
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.logger == nil {
		n.logger = slog.Default()
	}
	return n
}

// Result is the outcome of a full two-level crawl.
type Result struct {
	// ItemURLs is the sorted, deduplicated set of discovered item pages.
	ItemURLs []string

	// FileURLs is the sorted, deduplicated union of file links across
	// all items.
	FileURLs []string

	// ListingPages counts listing pages visited.
	ListingPages int

	// ItemFailures lists item pages that failed to load. Item-level
	// failures abort only that item's scope, never the crawl.
	ItemFailures []ItemFailure
}

// ItemFailure pairs a failed item URL with its cause.
type ItemFailure struct {
	URL string
	Err error
}

// Crawl runs the full two-level crawl: listing pages to item URLs, then
// each item's own pagination to file URLs. The browser session is closed
// before Crawl returns, on success and failure alike.
//
// Only a failure to reach the start URL or context cancellation is
// returned as an error; per-item failures are collected in the Result.
func (n *Navigator) Crawl(ctx context.Context, startURL string, itemPred, filePred model.LinkPredicate) (*Result, error) {
	defer func() {
		if err := n.browser.Close(); err != nil {
			n.logger.Warn("failed to close navigation session", "error", err)
		}
	}()

	items, listingPages, err := n.collectItems(ctx, startURL, itemPred)
	if err != nil {
		return nil, err
	}

	files, failures, err := n.collectFiles(ctx, items, filePred)
	if err != nil {
		return nil, err
	}

	return &Result{
		ItemURLs:     items,
		FileURLs:     files,
		ListingPages: listingPages,
		ItemFailures: failures,
	}, nil
}

// collectItems paginates the listing and harvests item URLs.
func (n *Navigator) collectItems(ctx context.Context, startURL string, itemPred model.LinkPredicate) ([]string, int, error) {
	if err := n.browser.Load(ctx, startURL); err != nil {
		return nil, 0, fmt.Errorf("failed to open listing: %w", err)
	}

	found, pages, reason, err := n.collectScope(ctx, itemPred, n.maxListingPages)
	if err != nil {
		return nil, 0, err
	}
	n.logger.Info("listing exhausted",
		"reason", reason.String(),
		"pages", pages,
		"items", len(found),
	)

	return sortedKeys(found), pages, nil
}

// collectFiles visits each item page and harvests its file links into one
// global set. Every item gets a fresh visited-signature set; cross-item
// duplicate links are no-ops, logged at debug.
func (n *Navigator) collectFiles(ctx context.Context, itemURLs []string, filePred model.LinkPredicate) ([]string, []ItemFailure, error) {
	files := make(map[string]struct{})
	var failures []ItemFailure

	for i, itemURL := range itemURLs {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		n.logger.Info("processing item page",
			"url", itemURL,
			"index", i+1,
			"total", len(itemURLs),
		)

		if err := n.browser.Load(ctx, itemURL); err != nil {
			// Scope-fatal only: record and move to the next item.
			n.logger.Warn("item page failed to load", "url", itemURL, "error", err)
			failures = append(failures, ItemFailure{URL: itemURL, Err: err})
			continue
		}

		found, pages, reason, err := n.collectScope(ctx, filePred, n.maxItemPages)
		if err != nil {
			return nil, nil, err
		}

		fresh := 0
		for f := range found {
			if _, dup := files[f]; dup {
				n.logger.Debug("file link already discovered", "url", f)
				continue
			}
			files[f] = struct{}{}
			fresh++
		}
		n.logger.Info("item exhausted",
			"url", itemURL,
			"reason", reason.String(),
			"pages", pages,
			"new_files", fresh,
			"total_files", len(files),
		)
	}

	return sortedKeys(files), failures, nil
}

// collectScope runs the per-scope pagination loop from the browser's
// current page: fingerprint, loop-check, harvest, cap-check, advance.
// The returned error is non-nil only for context cancellation.
func (n *Navigator) collectScope(ctx context.Context, pred model.LinkPredicate, maxPages int) (map[string]struct{}, int, ExhaustReason, error) {
	visited := make(map[Signature]struct{})
	results := make(map[string]struct{})
	pages := 0

	for {
		if err := ctx.Err(); err != nil {
			return results, pages, ExhaustCancelled, err
		}

		sig := PageSignature(n.browser)
		if _, seen := visited[sig]; seen {
			return results, pages, ExhaustLoop, nil
		}
		visited[sig] = struct{}{}

		harvested := Harvest(n.browser.Links(), pred)
		for h := range harvested {
			results[h] = struct{}{}
		}
		pages++
		n.logger.Debug("page harvested",
			"url", n.browser.CurrentURL(),
			"signature", sig.String(),
			"page_links", len(harvested),
			"scope_total", len(results),
		)

		if maxPages > 0 && pages >= maxPages {
			return results, pages, ExhaustPageCap, nil
		}

		advanced := false
		for _, strat := range n.strategies {
			ok, next, err := strat.Attempt(ctx, n.browser, sig)
			if err != nil {
				return results, pages, ExhaustCancelled, err
			}
			if ok && next != sig {
				n.logger.Debug("advanced", "strategy", strat.Name(), "signature", next.String())
				advanced = true
				break
			}
		}
		if !advanced {
			return results, pages, ExhaustNoAdvance, nil
		}
	}
}

// sortedKeys returns the map's keys in sorted order, making crawl output
// deterministic and independent of harvest timing.
func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
