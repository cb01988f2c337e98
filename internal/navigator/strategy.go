package navigator

import (
	"context"
	"time"

	"github.com/docpull/docpull/internal/browser"
)

// AdvanceStrategy is one way of moving a pagination scope to its next
// page. Strategies are tried in order; each reports whether it confirmed
// an advance (the page signature changed within its confirmation window).
// A strategy that cannot apply, finds its control disabled, or times out
// waiting for movement returns advanced=false so the next strategy runs.
// Only context cancellation is returned as an error.
type AdvanceStrategy interface {
	// Name identifies the strategy in logs.
	Name() string

	// Attempt tries to advance past the page fingerprinted by prev.
	Attempt(ctx context.Context, b browser.Browser, prev Signature) (advanced bool, next Signature, err error)
}

// pollInterval is how often confirmation waits re-fingerprint the page.
const pollInterval = 100 * time.Millisecond

// nextControlSelectors are the control shapes portal pagers use for their
// explicit "next" link, in preference order.
var nextControlSelectors = []string{
	"a[id*='aNextPage']",
	"a[id*='lnkbtnNext']",
}

// contentContainerSelectors are the grid/list containers the harvested
// content typically lives in. The scoped strategy only considers a next
// control inside one of these, so a page-level pager for some unrelated
// widget cannot hijack the advance.
var contentContainerSelectors = []string{
	"[id*='rg']",
	".RadGrid",
	".k-grid",
	".grid",
}

// NextControlStrategy advances by clicking an explicit next control
// located by CSS selectors. It implements both the scoped and page-scope
// variants; only the selector list differs.
type NextControlStrategy struct {
	name           string
	selectors      []string
	locateTimeout  time.Duration
	confirmTimeout time.Duration
}

// NewScopedNextStrategy returns the strategy that looks for a next
// control inside a content container near the harvested links.
func NewScopedNextStrategy(locateTimeout, confirmTimeout time.Duration) *NextControlStrategy {
	selectors := make([]string, 0, len(contentContainerSelectors)*len(nextControlSelectors))
	for _, container := range contentContainerSelectors {
		for _, control := range nextControlSelectors {
			selectors = append(selectors, container+" "+control)
		}
	}
	return &NextControlStrategy{
		name:           "scoped_next",
		selectors:      selectors,
		locateTimeout:  locateTimeout,
		confirmTimeout: confirmTimeout,
	}
}

// NewPageNextStrategy returns the strategy that looks for a next control
// anywhere on the page.
func NewPageNextStrategy(locateTimeout, confirmTimeout time.Duration) *NextControlStrategy {
	return &NextControlStrategy{
		name:           "page_next",
		selectors:      nextControlSelectors,
		locateTimeout:  locateTimeout,
		confirmTimeout: confirmTimeout,
	}
}

// Name identifies the strategy in logs.
func (s *NextControlStrategy) Name() string { return s.name }

// Attempt locates the control within the locate window, rejects disabled
// controls, clicks, and waits for the signature to change.
func (s *NextControlStrategy) Attempt(ctx context.Context, b browser.Browser, prev Signature) (bool, Signature, error) {
	ctrl, found, err := locateControl(ctx, b, s.selectors, s.locateTimeout)
	if err != nil {
		return false, prev, err
	}
	if !found {
		return false, prev, nil
	}
	if b.IsDisabled(ctrl) {
		return false, prev, nil
	}
	if err := b.Click(ctx, ctrl); err != nil {
		if ctx.Err() != nil {
			return false, prev, ctx.Err()
		}
		// A failed click is a failed strategy, not a failed crawl.
		return false, prev, nil
	}
	return confirmAdvance(ctx, b, prev, s.confirmTimeout)
}

// PostBackStrategy advances by extracting a hidden server-side navigation
// command from any postback href on the page and submitting it directly,
// without relying on a clickable control. This is the fallback for pagers
// whose visible controls are script-generated or unreliable.
type PostBackStrategy struct {
	confirmTimeout time.Duration
}

// NewPostBackStrategy returns the hidden-navigation fallback strategy.
func NewPostBackStrategy(confirmTimeout time.Duration) *PostBackStrategy {
	return &PostBackStrategy{confirmTimeout: confirmTimeout}
}

// Name identifies the strategy in logs.
func (s *PostBackStrategy) Name() string { return "postback" }

// Attempt finds the first postback href on the page and submits it.
func (s *PostBackStrategy) Attempt(ctx context.Context, b browser.Browser, prev Signature) (bool, Signature, error) {
	for _, l := range b.Links() {
		href, err := l.Href()
		if err != nil {
			continue
		}
		target, argument, ok := browser.ParsePostBack(href)
		if !ok {
			continue
		}
		if err := b.SubmitPostBack(ctx, target, argument); err != nil {
			if ctx.Err() != nil {
				return false, prev, ctx.Err()
			}
			return false, prev, nil
		}
		return confirmAdvance(ctx, b, prev, s.confirmTimeout)
	}
	return false, prev, nil
}

// locateControl polls for a control matching the selectors until the
// locate window closes.
func locateControl(ctx context.Context, b browser.Browser, selectors []string, timeout time.Duration) (browser.Control, bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		if ctrl, found := b.FindControl(ctx, selectors); found {
			return ctrl, true, nil
		}
		if time.Now().After(deadline) {
			return nil, false, nil
		}
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// confirmAdvance waits, bounded by the confirmation window, for the page
// signature to differ from prev. The timeout elapsing means the trigger
// was a false positive and the strategy failed.
func confirmAdvance(ctx context.Context, b browser.Browser, prev Signature, timeout time.Duration) (bool, Signature, error) {
	deadline := time.Now().Add(timeout)
	for {
		if sig := PageSignature(b); sig != prev {
			return true, sig, nil
		}
		if time.Now().After(deadline) {
			return false, prev, nil
		}
		select {
		case <-ctx.Done():
			return false, prev, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}
