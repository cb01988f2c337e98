package download

import (
	"bytes"
	"fmt"
	"mime"
	"strings"
)

// fileMagic maps a target extension to the leading bytes a genuine file
// of that type must start with. Extensions without an entry skip the
// magic check and rely on the size floor alone.
var fileMagic = map[string][]byte{
	".pdf": []byte("%PDF-"),
}

// magicForExtension returns the expected leading bytes for ext, or nil
// when no magic is known.
func magicForExtension(ext string) []byte {
	return fileMagic[strings.ToLower(ext)]
}

// validateBody checks a downloaded body's size and leading bytes.
// head must hold at least the first len(magic) bytes of the body when the
// body is that long.
func validateBody(size, minSize int64, head, magic []byte) error {
	if size < minSize {
		return fmt.Errorf("%w: %d bytes, minimum %d", ErrFileTooSmall, size, minSize)
	}
	if len(magic) > 0 && !bytes.HasPrefix(head, magic) {
		return fmt.Errorf("%w: expected leading bytes %q", ErrBadFileFormat, magic)
	}
	return nil
}

// checkContentType applies the allowlist to a response content type.
// An allowlisted type passes. A textual type outside the allowlist is an
// error: text where a document should be means the portal served an error
// page. An absent or non-textual type is let through so the decision
// falls to byte validation, which judges the actual payload rather than a
// header portals frequently get wrong.
func checkContentType(contentType string, allowed []string) error {
	if contentType == "" {
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	for _, a := range allowed {
		if mediaType == a {
			return nil
		}
	}
	if isTextualMediaType(mediaType) {
		return fmt.Errorf("%w: %s", ErrDisallowedContentType, mediaType)
	}
	return nil
}

// isTextualMediaType reports whether a media type denotes text rather
// than a binary payload.
func isTextualMediaType(mediaType string) bool {
	if strings.HasPrefix(mediaType, "text/") {
		return true
	}
	switch mediaType {
	case "application/json", "application/xml", "application/xhtml+xml", "application/javascript":
		return true
	}
	return false
}
