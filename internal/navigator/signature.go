package navigator

import (
	"encoding/hex"
	"sort"

	"golang.org/x/crypto/sha3"

	"github.com/docpull/docpull/internal/browser"
)

// maxSignatureLinks caps how many links feed the signature. Pages with
// thousands of anchors would otherwise make fingerprinting quadratic over
// a long crawl, and 500 sorted links are more than enough to distinguish
// pagination states.
const maxSignatureLinks = 500

// Signature fingerprints a page's navigable state: a SHA3-256 hash of the
// current URL followed by the first 500 lexicographically sorted distinct
// outgoing links. It is a pure function of its inputs and is used only for
// equality, never ordering. Hashing sorted links rather than raw DOM makes
// the fingerprint stable under the link reordering portals routinely do.
type Signature [32]byte

// String returns a short hex form for logging.
func (s Signature) String() string {
	return hex.EncodeToString(s[:8])
}

// ComputeSignature fingerprints (currentURL, outgoingLinks). The link list
// may contain duplicates and be in any order; the result is identical for
// any permutation.
func ComputeSignature(currentURL string, outgoingLinks []string) Signature {
	seen := make(map[string]struct{}, len(outgoingLinks))
	uniq := make([]string, 0, len(outgoingLinks))
	for _, l := range outgoingLinks {
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		uniq = append(uniq, l)
	}
	sort.Strings(uniq)
	if len(uniq) > maxSignatureLinks {
		uniq = uniq[:maxSignatureLinks]
	}

	h := sha3.New256()
	h.Write([]byte(currentURL))
	for _, l := range uniq {
		h.Write([]byte{0}) // separator so link boundaries can't collide
		h.Write([]byte(l))
	}

	var sig Signature
	h.Sum(sig[:0])
	return sig
}

// PageSignature fingerprints the browser's current page. Stale link
// handles are skipped, consistent with harvesting.
func PageSignature(b browser.Browser) Signature {
	links := b.Links()
	hrefs := make([]string, 0, len(links))
	for _, l := range links {
		href, err := l.Href()
		if err != nil {
			continue
		}
		hrefs = append(hrefs, href)
	}
	return ComputeSignature(b.CurrentURL(), hrefs)
}
