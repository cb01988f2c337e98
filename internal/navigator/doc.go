// Package navigator implements the crawl navigation state machine.
//
// # Architecture
//
// A Navigator drives one browser session through two levels of pagination:
// the listing level, harvesting item-page URLs, and the per-item level,
// harvesting file URLs. Each pagination scope owns its own visited-signature
// set and result accumulator, so loops are detected per scope and a fresh
// item page always starts clean.
//
// Per scope the loop is: fingerprint the page, stop if the signature was
// already seen, harvest matching links, stop at the page cap, then try the
// ordered advance strategies until one confirms a signature change. All
// strategies failing, or a post-advance signature equal to the pre-advance
// one, means the scope is exhausted. Exhaustion is the expected terminal
// condition, not an error.
//
// # Advance strategies
//
// Strategies are tried in order: a next control scoped near the harvested
// content, the same control at page scope, then direct submission of the
// hidden server-side navigation command extracted from a postback href.
// New site-specific strategies implement AdvanceStrategy and slot into the
// list without touching the core loop.
package navigator
