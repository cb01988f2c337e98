package navigator

import (
	"github.com/docpull/docpull/internal/browser"
	"github.com/docpull/docpull/internal/model"
)

// Harvest returns the distinct canonical targets among the given link
// handles that satisfy the predicate.
//
// Handles that have gone stale between enumeration and read are skipped,
// not fatal: the page mutated under us and the link will be seen again on
// the next pass if it still exists. Harvesting is idempotent; callers
// union the result into their accumulator, so re-discovering a link is a
// no-op by construction.
func Harvest(links []browser.Link, pred model.LinkPredicate) map[string]struct{} {
	found := make(map[string]struct{})
	for _, l := range links {
		href, err := l.Href()
		if err != nil {
			// Stale handle; skip and keep what we have.
			continue
		}
		if pred(href) {
			found[model.CanonicalURL(href)] = struct{}{}
		}
	}
	return found
}
