package browser

import (
	"context"
	"regexp"
)

// Link is a handle to one anchor on the current page. Handles are live
// references: between enumeration and read the underlying element can be
// replaced, in which case Href returns ErrStaleLink and the harvester
// skips the handle.
type Link interface {
	// Href returns the link's absolute target URL.
	Href() (string, error)
}

// Control is an opaque handle to a located page control (a "next" anchor,
// a pager button). Only the Browser that produced it can interpret it.
type Control any

// Browser is the capability contract between the navigator and a
// navigation session. One session is exclusively owned by a navigator for
// an entire run and must be released with Close on every exit path.
type Browser interface {
	// Load navigates the session to the given URL and waits for the page
	// to become ready, bounded by the implementation's page-load timeout.
	Load(ctx context.Context, url string) error

	// CurrentURL returns the URL of the page the session is on.
	CurrentURL() string

	// Links returns handles to the anchors currently on the page.
	Links() []Link

	// FindControl locates the first control matching any of the given
	// selectors, tried in order. Returns false when none match.
	FindControl(ctx context.Context, selectors []string) (Control, bool)

	// IsDisabled reports whether a located control is marked disabled.
	IsDisabled(c Control) bool

	// Click triggers a control and lets the page react.
	Click(ctx context.Context, c Control) error

	// SubmitPostBack performs a hidden server-side navigation by
	// submitting the page's navigation form with the given event target
	// and argument, without relying on any clickable control.
	SubmitPostBack(ctx context.Context, target, argument string) error

	// Close releases the session.
	Close() error
}

// postBackPattern matches ASP.NET __doPostBack('target','argument') hrefs.
var postBackPattern = regexp.MustCompile(`__doPostBack\('([^']*)','([^']*)'\)`)

// ParsePostBack extracts the event target and argument from a postback
// href. Returns ok=false when the href is not a postback link.
func ParsePostBack(href string) (target, argument string, ok bool) {
	m := postBackPattern.FindStringSubmatch(href)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}
