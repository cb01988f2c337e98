package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// Where applicable these match the behavior of typical paginated government
// portals: generous timeouts, conservative retry spacing, small minimum
// file sizes that still reject HTML error pages.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "docpull"

	// DefaultMaxRetries is the number of download attempts per URL before
	// the record is marked failed. Five attempts with exponential backoff
	// rides out most transient 5xx windows without hammering the server.
	DefaultMaxRetries = 5

	// DefaultBackoffBase is the exponential backoff base. Delay between
	// attempts is base^attempt seconds, capped at DefaultBackoffCap.
	DefaultBackoffBase = 1.5

	// DefaultBackoffCap bounds a single backoff sleep. Without a cap,
	// base^attempt grows past any reasonable wait after a few retries.
	DefaultBackoffCap = 30 * time.Second

	// DefaultRequestTimeout is the per-request timeout for file downloads.
	// Large documents on slow portals need more headroom than page loads.
	DefaultRequestTimeout = 60 * time.Second

	// DefaultMinFileSize rejects downloads smaller than this many bytes.
	// Genuine documents are never this small; tiny responses are almost
	// always error pages served with a 200 status.
	DefaultMinFileSize = 2048

	// DefaultFileExtension is the extension harvested file links must have.
	DefaultFileExtension = ".pdf"

	// DefaultPageLoadTimeout bounds the initial load of a page.
	DefaultPageLoadTimeout = 30 * time.Second

	// DefaultAdvanceTimeout bounds the wait for a page signature to change
	// after an advance strategy fires. Kept separate from the page-load
	// timeout because server-side paging is usually faster than a full
	// navigation but can still stall.
	DefaultAdvanceTimeout = 15 * time.Second

	// DefaultLocateTimeout bounds the wait for a single advance control to
	// appear before the strategy gives up and the next one is tried.
	DefaultLocateTimeout = 5 * time.Second

	// DefaultMaxListingPages and DefaultMaxItemPages are the per-scope
	// page caps. 0 means unbounded: pagination ends only when a signature
	// repeats or every advance strategy fails.
	DefaultMaxListingPages = 0
	DefaultMaxItemPages    = 0

	// DefaultConcurrency is the number of simultaneous downloads. The
	// pipeline is deliberately sequential by default; raising this is an
	// opt-in that never changes the sorted output contract.
	DefaultConcurrency = 1

	// DefaultUserAgent identifies docpull in HTTP requests. A descriptive
	// User-Agent lets portal operators recognize the traffic in their logs.
	DefaultUserAgent = "docpull/1.0 (+https://github.com/docpull/docpull)"
)

// DefaultAllowedContentTypes lists the response content-types accepted
// without suspicion. A textual content-type outside this list is treated as
// a soft failure (likely an HTML error page in front of the real file).
func DefaultAllowedContentTypes() []string {
	return []string{"application/pdf", "application/octet-stream"}
}

// Config holds all configuration options for docpull.
// It is populated from CLI flags and the optional YAML file, then injected
// into each component at construction. No component reads global state.
//
// Design decision: a single flat struct instead of nested sub-configs.
// The option count is manageable and nesting would only add indirection.
type Config struct {
	// StartURL is the listing page the crawl begins at.
	StartURL string

	// ItemQueryKey identifies item links: an href whose query string
	// contains this key is treated as an item page.
	ItemQueryKey string

	// FileExtension identifies file links: an href whose path, ignoring
	// query and fragment, ends with this extension is treated as a file.
	FileExtension string

	// MaxListingPages caps listing pagination. 0 = unbounded.
	MaxListingPages int

	// MaxItemPages caps per-item pagination. 0 = unbounded.
	MaxItemPages int

	// PageLoadTimeout bounds each page load.
	PageLoadTimeout time.Duration

	// AdvanceTimeout bounds the signature-change confirmation wait after
	// an advance strategy triggers.
	AdvanceTimeout time.Duration

	// LocateTimeout bounds the search for an advance control.
	LocateTimeout time.Duration

	// MaxRetries is the number of download attempts per URL.
	MaxRetries int

	// BackoffBase is the exponential backoff base (delay = base^attempt).
	BackoffBase float64

	// BackoffCap bounds a single backoff delay.
	BackoffCap time.Duration

	// RequestTimeout is the per-request download timeout.
	RequestTimeout time.Duration

	// MinFileSize rejects downloads smaller than this many bytes.
	MinFileSize int64

	// AllowedContentTypes lists accepted response content-types.
	AllowedContentTypes []string

	// DownloadDir is where verified files are installed.
	DownloadDir string

	// StateDir is the directory holding the SQLite state database.
	StateDir string

	// OutputDir is where the frontier text files are written.
	OutputDir string

	// Concurrency is the number of simultaneous downloads.
	Concurrency int

	// UserAgent is sent with every HTTP request.
	UserAgent string

	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// ConfigFilePath is an explicit config file path. Empty means search
	// for .docpull in the current directory, then the home directory.
	ConfigFilePath string
}

// NewConfig creates a Config with documented defaults. Callers override
// individual fields from flags or the config file afterwards.
func NewConfig() *Config {
	return &Config{
		FileExtension:       DefaultFileExtension,
		MaxListingPages:     DefaultMaxListingPages,
		MaxItemPages:        DefaultMaxItemPages,
		PageLoadTimeout:     DefaultPageLoadTimeout,
		AdvanceTimeout:      DefaultAdvanceTimeout,
		LocateTimeout:       DefaultLocateTimeout,
		MaxRetries:          DefaultMaxRetries,
		BackoffBase:         DefaultBackoffBase,
		BackoffCap:          DefaultBackoffCap,
		RequestTimeout:      DefaultRequestTimeout,
		MinFileSize:         DefaultMinFileSize,
		AllowedContentTypes: DefaultAllowedContentTypes(),
		DownloadDir:         filepath.Join(XDGDataDir(), "files"),
		StateDir:            XDGDataDir(),
		OutputDir:           ".",
		Concurrency:         DefaultConcurrency,
		UserAgent:           DefaultUserAgent,
	}
}

// XDGDataDir returns the XDG data directory for docpull.
// On Linux: ~/.local/share/docpull
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for docpull.
// On Linux: ~/.config/docpull
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It is called once after flag and file merging, before any stage runs,
// so components can assume a valid config.
func (c *Config) Validate() error {
	if c.StartURL == "" {
		return ErrNoStartURL
	}
	if c.ItemQueryKey == "" {
		return ErrNoItemQueryKey
	}
	if c.PageLoadTimeout <= 0 || c.AdvanceTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxListingPages < 0 || c.MaxItemPages < 0 {
		return ErrInvalidPageCap
	}
	return c.ValidateFetch()
}

// ValidateFetch checks only the settings the fetch stage uses. The fetch
// command validates with this because it needs no start URL or item key.
func (c *Config) ValidateFetch() error {
	if c.FileExtension == "" || c.FileExtension[0] != '.' {
		return ErrInvalidFileExtension
	}
	if c.MaxRetries <= 0 {
		return ErrInvalidMaxRetries
	}
	if c.BackoffBase <= 1 {
		return ErrInvalidBackoffBase
	}
	if c.BackoffCap <= 0 || c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MinFileSize < 0 {
		return ErrInvalidMinFileSize
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	return nil
}
