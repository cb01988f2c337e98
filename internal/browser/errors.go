package browser

import (
	"errors"
	"fmt"
)

// ErrStaleLink is returned by Link.Href when the underlying element was
// replaced between enumeration and read. Harvesting skips stale handles.
var ErrStaleLink = errors.New("stale link handle")

// ErrNoForm is returned by SubmitPostBack when the current page has no
// form to carry the navigation fields.
var ErrNoForm = errors.New("page has no navigation form")

// NavigationError indicates a page failed to load or become ready.
// It aborts only the current pagination scope, never the whole crawl.
type NavigationError struct {
	// URL is the page that failed.
	URL string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation failed for %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *NavigationError) Unwrap() error {
	return e.Err
}
