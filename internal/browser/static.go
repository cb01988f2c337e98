package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"resty.dev/v3"
)

// Static is a Browser over plain HTTP: it fetches server-rendered pages,
// exposes their anchors and controls through goquery selectors, and
// emulates hidden postback navigation by resubmitting the page form.
//
// Design decision: no headless browser. The portals docpull targets render
// their pagination server-side; everything the navigator needs (anchors,
// pager controls, the postback form) is in the HTML. An HTTP client is
// orders of magnitude cheaper and far easier to test against httptest.
type Static struct {
	// client is the underlying HTTP client.
	client *resty.Client

	// pageLoadTimeout bounds each page fetch.
	pageLoadTimeout time.Duration

	// doc is the parsed current page. Nil before the first Load.
	doc *goquery.Document

	// currentURL is the resolved URL of the current page.
	currentURL *url.URL
}

// StaticOption configures a Static browser.
type StaticOption func(*Static)

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) StaticOption {
	return func(s *Static) {
		s.client.SetHeader("User-Agent", ua)
	}
}

// WithPageLoadTimeout bounds each page fetch.
func WithPageLoadTimeout(d time.Duration) StaticOption {
	return func(s *Static) {
		if d > 0 {
			s.pageLoadTimeout = d
		}
	}
}

// NewStatic creates a Static browser session.
func NewStatic(opts ...StaticOption) *Static {
	client := resty.New().
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	s := &Static{
		client:          client,
		pageLoadTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches url and makes it the current page.
func (s *Static) Load(ctx context.Context, rawURL string) error {
	reqCtx, cancel := context.WithTimeout(ctx, s.pageLoadTimeout)
	defer cancel()

	resp, err := s.client.R().SetContext(reqCtx).Get(rawURL)
	if err != nil {
		return &NavigationError{URL: rawURL, Err: err}
	}
	if resp.IsError() {
		return &NavigationError{URL: rawURL, Err: fmt.Errorf("HTTP %d", resp.StatusCode())}
	}

	finalURL := rawURL
	if resp.RawResponse != nil && resp.RawResponse.Request != nil && resp.RawResponse.Request.URL != nil {
		finalURL = resp.RawResponse.Request.URL.String()
	}

	return s.setPage(finalURL, resp.String())
}

// setPage parses body as the new current page.
func (s *Static) setPage(pageURL, body string) error {
	u, err := url.Parse(pageURL)
	if err != nil {
		return &NavigationError{URL: pageURL, Err: err}
	}

	node, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return &NavigationError{URL: pageURL, Err: err}
	}

	s.doc = goquery.NewDocumentFromNode(node)
	s.currentURL = u
	return nil
}

// CurrentURL returns the URL of the current page, empty before first Load.
func (s *Static) CurrentURL() string {
	if s.currentURL == nil {
		return ""
	}
	return s.currentURL.String()
}

// staticLink is a Link over a resolved href. Static pages cannot go stale,
// so Href never fails here; the interface allows it for live backends.
type staticLink struct {
	href string
}

// Href returns the link target.
func (l staticLink) Href() (string, error) {
	return l.href, nil
}

// Links returns handles to every anchor with an href on the current page.
// Plain hrefs are resolved to absolute URLs; javascript: hrefs (postback
// links) are kept raw so the postback advance strategy can find them.
func (s *Static) Links() []Link {
	if s.doc == nil {
		return nil
	}

	var links []Link
	s.doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}
		href = strings.TrimSpace(href)
		if strings.HasPrefix(href, "javascript:") {
			links = append(links, staticLink{href: href})
			return
		}
		if strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") || href == "#" {
			return
		}
		links = append(links, staticLink{href: s.resolve(href)})
	})
	return links
}

// resolve makes an href absolute against the current page URL.
func (s *Static) resolve(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if s.currentURL == nil {
		return href
	}
	return s.currentURL.ResolveReference(u).String()
}

// staticControl wraps a located selection.
type staticControl struct {
	sel *goquery.Selection
}

// FindControl locates the first element matching any selector, in order.
// The context is accepted for interface symmetry; a static DOM needs no
// wait to settle.
func (s *Static) FindControl(_ context.Context, selectors []string) (Control, bool) {
	if s.doc == nil {
		return nil, false
	}
	for _, selector := range selectors {
		sel := s.doc.Find(selector).First()
		if sel.Length() > 0 {
			return &staticControl{sel: sel}, true
		}
	}
	return nil, false
}

// IsDisabled reports whether the control carries a disabled attribute or a
// "disabled" class, the two conventions portal pagers use.
func (s *Static) IsDisabled(c Control) bool {
	ctrl, ok := c.(*staticControl)
	if !ok {
		return false
	}
	if _, has := ctrl.sel.Attr("disabled"); has {
		return true
	}
	class, _ := ctrl.sel.Attr("class")
	return strings.Contains(class, "disabled")
}

// Click triggers a control: postback hrefs go through SubmitPostBack,
// plain hrefs load their target.
func (s *Static) Click(ctx context.Context, c Control) error {
	ctrl, ok := c.(*staticControl)
	if !ok {
		return fmt.Errorf("control does not belong to this session")
	}

	href, _ := ctrl.sel.Attr("href")
	href = strings.TrimSpace(href)

	if target, argument, ok := ParsePostBack(href); ok {
		return s.SubmitPostBack(ctx, target, argument)
	}
	if href == "" || href == "#" || strings.HasPrefix(href, "javascript:") {
		return fmt.Errorf("control has no followable target")
	}
	return s.Load(ctx, s.resolve(href))
}

// SubmitPostBack re-submits the page's form with the ASP.NET event fields
// set, emulating what __doPostBack does in the real page's script.
func (s *Static) SubmitPostBack(ctx context.Context, target, argument string) error {
	if s.doc == nil || s.currentURL == nil {
		return ErrNoForm
	}

	form := s.doc.Find("form").First()
	if form.Length() == 0 {
		return ErrNoForm
	}

	// Carry over the form's field state (__VIEWSTATE and friends), then
	// inject the navigation event fields.
	fields := make(map[string]string)
	form.Find("input[name]").Each(func(_ int, input *goquery.Selection) {
		name, _ := input.Attr("name")
		typ, _ := input.Attr("type")
		if typ == "submit" || typ == "button" || typ == "image" {
			return
		}
		value, _ := input.Attr("value")
		fields[name] = value
	})
	fields["__EVENTTARGET"] = target
	fields["__EVENTARGUMENT"] = argument

	actionURL := s.currentURL.String()
	if action, ok := form.Attr("action"); ok && action != "" {
		actionURL = s.resolve(action)
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.pageLoadTimeout)
	defer cancel()

	resp, err := s.client.R().SetContext(reqCtx).SetFormData(fields).Post(actionURL)
	if err != nil {
		return &NavigationError{URL: actionURL, Err: err}
	}
	if resp.IsError() {
		return &NavigationError{URL: actionURL, Err: fmt.Errorf("HTTP %d", resp.StatusCode())}
	}

	return s.setPage(actionURL, resp.String())
}

// Close releases the session's HTTP resources.
func (s *Static) Close() error {
	return s.client.Close()
}
