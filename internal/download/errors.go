package download

import (
	"errors"
	"fmt"
)

var (
	// ErrFileTooSmall is returned when a response body is smaller than the
	// configured minimum. Tiny bodies are almost always error pages served
	// with a 200 status.
	ErrFileTooSmall = errors.New("downloaded file is too small")

	// ErrBadFileFormat is returned when a response body does not start
	// with the magic bytes expected for the target file type.
	ErrBadFileFormat = errors.New("downloaded file has an unexpected format")

	// ErrDisallowedContentType is returned when the server answers with a
	// textual content type outside the allowlist, which means an HTML or
	// JSON error page stands where the file should be.
	ErrDisallowedContentType = errors.New("disallowed content type")
)

// HTTPError reports a response with a failure status code. It is a
// retryable attempt error: 5xx responses on the target portals are
// routinely transient.
type HTTPError struct {
	// StatusCode is the HTTP status the server answered with.
	StatusCode int
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("server returned status %d", e.StatusCode)
}
