package config

import "errors"

// Configuration validation errors returned by Config.Validate().
//
// Design decision: package-level sentinel errors rather than fmt.Errorf at
// each check, so callers can branch with errors.Is() while the messages
// stay human-readable.
var (
	// ErrNoStartURL is returned when no listing start URL is configured.
	ErrNoStartURL = errors.New("no start URL: set --start-url or start_url in the config file")

	// ErrNoItemQueryKey is returned when the item-link query key is empty.
	// Without it the crawler cannot tell item pages apart from navigation.
	ErrNoItemQueryKey = errors.New("no item query key: set --item-key or item_query_key in the config file")

	// ErrInvalidFileExtension is returned when the file extension is empty
	// or missing its leading dot.
	ErrInvalidFileExtension = errors.New("invalid file extension: must start with '.' (e.g. \".pdf\")")

	// ErrInvalidMaxRetries is returned when max retries is not positive.
	ErrInvalidMaxRetries = errors.New("invalid max retries: must be positive")

	// ErrInvalidBackoffBase is returned when the backoff base is <= 1,
	// which would make delays constant or shrinking.
	ErrInvalidBackoffBase = errors.New("invalid backoff base: must be greater than 1")

	// ErrInvalidTimeout is returned when any of the timeout knobs is not
	// positive. The four clocks (page load, advance confirmation, request,
	// backoff cap) are validated together because a zero on any of them
	// causes immediate spurious failures.
	ErrInvalidTimeout = errors.New("invalid timeout: all timeouts must be positive")

	// ErrInvalidMinFileSize is returned when the minimum file size is negative.
	ErrInvalidMinFileSize = errors.New("invalid min file size: must be non-negative")

	// ErrInvalidPageCap is returned when a per-scope page cap is negative.
	// Use 0 for unbounded pagination.
	ErrInvalidPageCap = errors.New("invalid page cap: must be non-negative (0 = unbounded)")

	// ErrInvalidConcurrency is returned when download concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")
)
