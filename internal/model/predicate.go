package model

import (
	"net/url"
	"strings"
)

// LinkPredicate reports whether an href denotes a link of interest.
// Predicates must be pure functions: the harvester may evaluate the same
// href any number of times across pagination passes.
type LinkPredicate func(href string) bool

// QueryKeyPredicate returns a predicate matching hrefs whose query string
// contains the given key. This is how item pages are recognized on portals
// that address documents by an identifying query parameter
// (e.g. "?lawitemid=12345").
//
// The match is case-insensitive on the key and tolerates hrefs that fail
// strict URL parsing, falling back to a substring check, because portals
// routinely emit hrefs with unescaped characters.
func QueryKeyPredicate(key string) LinkPredicate {
	lowerKey := strings.ToLower(key)
	return func(href string) bool {
		if href == "" || key == "" {
			return false
		}
		u, err := url.Parse(href)
		if err != nil || u.RawQuery == "" {
			return strings.Contains(strings.ToLower(href), lowerKey+"=")
		}
		for k := range u.Query() {
			if strings.ToLower(k) == lowerKey {
				return true
			}
		}
		return false
	}
}

// ExtensionPredicate returns a predicate matching hrefs whose path, ignoring
// query and fragment, ends with the given extension. The extension should
// include the leading dot (".pdf"). Matching is case-insensitive, so
// "REPORT.PDF?ver=2" matches ".pdf".
func ExtensionPredicate(ext string) LinkPredicate {
	lowerExt := strings.ToLower(ext)
	return func(href string) bool {
		if href == "" || ext == "" {
			return false
		}
		path := href
		if u, err := url.Parse(href); err == nil {
			path = u.Path
		} else {
			// Strip query/fragment manually for unparseable hrefs.
			if i := strings.IndexAny(path, "?#"); i >= 0 {
				path = path[:i]
			}
		}
		return strings.HasSuffix(strings.ToLower(path), lowerExt)
	}
}

// CanonicalURL normalizes a URL for deduplication: lowercases scheme and
// host, drops the fragment, and normalizes an empty path to "/". Query
// strings are preserved because they identify items on the portals we
// target. Unparseable input is returned unchanged.
func CanonicalURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" && u.Host != "" {
		u.Path = "/"
	}
	return u.String()
}
