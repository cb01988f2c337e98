package download

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"path"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// unsafeFilenameChars matches everything that is not portable across
// filesystems.
var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// DeriveFilename maps a file URL to a deterministic, filesystem-safe
// local filename. The query and fragment are stripped, the path basename
// is NFC-normalized so the same name arriving in different Unicode
// compositions maps to one file, and unsafe characters become
// underscores. URLs that yield no usable basename fall back to a name
// derived from the URL's own hash, so the mapping stays total and stable.
func DeriveFilename(rawURL, ext string) string {
	base := ""
	if u, err := url.Parse(rawURL); err == nil {
		base = path.Base(u.Path)
	} else {
		// Unparseable URL: strip query/fragment by hand.
		trimmed := rawURL
		if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
			trimmed = trimmed[:i]
		}
		base = path.Base(trimmed)
	}

	if base == "." || base == "/" || base == "" {
		return hashedFilename(rawURL, ext)
	}

	base = norm.NFC.String(base)
	base = unsafeFilenameChars.ReplaceAllString(base, "_")

	// A name that sanitized down to nothing but separators carries no
	// identity; use the hash fallback instead.
	if strings.Trim(base, "._-") == "" {
		return hashedFilename(rawURL, ext)
	}
	return base
}

// hashedFilename builds the fallback name from the URL's SHA-256.
func hashedFilename(rawURL, ext string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return "file_" + hex.EncodeToString(sum[:8]) + ext
}
