package model

import "time"

// Status represents the lifecycle state of a download record.
//
// Design decision: We use iota-based constants rather than raw strings
// internally for cheap comparisons, with String()/ParseStatus converting
// to the values stored in the database.
type Status int

const (
	// StatusPending indicates an attempt has been recorded but no terminal
	// outcome has been reached yet. A record stuck in pending after a run
	// usually means the process crashed mid-fetch.
	StatusPending Status = iota

	// StatusSuccess indicates the file was downloaded, validated, and
	// installed at its final path.
	StatusSuccess

	// StatusFailed indicates all retry attempts were exhausted without a
	// verified download. The record keeps the last error for inspection.
	StatusFailed
)

// String returns the database representation of the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ParseStatus converts a stored status string back to a Status.
// Unrecognized values map to StatusPending, the safest interpretation:
// the URL will simply be attempted again on the next run.
func ParseStatus(s string) Status {
	switch s {
	case "success":
		return StatusSuccess
	case "failed":
		return StatusFailed
	default:
		return StatusPending
	}
}

// MaxErrorLength is the maximum number of bytes of error text stored in a
// download record. Longer messages are truncated before persisting so a
// pathological error (e.g. an HTML body in an error string) cannot bloat
// the state database.
const MaxErrorLength = 2000

// DownloadRecord is the durable per-URL state of the download pipeline.
// Exactly one record exists per URL; the URL is the primary key.
//
// Status transitions: pending -> {success, failed}, failed -> pending (on
// retry) -> {success, failed}. Success is idempotent: re-marking success
// refreshes metadata and clears LastError. Attempts never decreases.
type DownloadRecord struct {
	// URL is the remote file URL and the record's key.
	URL string

	// Filename is the local path the file was (or will be) installed at.
	Filename string

	// SizeBytes is the size of the verified file on disk.
	SizeBytes int64

	// Checksum is the SHA-256 hex digest of the full file content.
	Checksum string

	// ContentType is the Content-Type the server reported, media type only.
	ContentType string

	// HTTPStatus is the status code of the last response received.
	HTTPStatus int

	// Status is the record's lifecycle state.
	Status Status

	// Attempts counts fetch attempts across all runs. Monotonic.
	Attempts int

	// LastError holds the most recent failure message, truncated to
	// MaxErrorLength. Empty after a successful download.
	LastError string

	// LastAttemptAt is when the URL was last attempted, in UTC.
	LastAttemptAt time.Time
}

// TruncateError shortens an error message to MaxErrorLength bytes.
func TruncateError(msg string) string {
	if len(msg) > MaxErrorLength {
		return msg[:MaxErrorLength]
	}
	return msg
}
