package model

import (
	"sort"
	"time"
)

// RunReport accumulates the results of one docpull run. Pipeline steps fill
// it in as they execute; report writers render it at the end.
//
// Design decision: steps communicate through a shared report rather than
// returning values because steps are composed dynamically (crawl-only,
// fetch-only, or both) and later steps need the earlier steps' output.
type RunReport struct {
	// StartURL is the listing page the crawl began at.
	StartURL string `json:"start_url"`

	// StartedAt is when the run began, in UTC.
	StartedAt time.Time `json:"started_at"`

	// ItemURLs is the sorted, deduplicated set of discovered item pages.
	ItemURLs []string `json:"item_urls,omitempty"`

	// FileURLs is the sorted, deduplicated set of discovered file links,
	// unioned across all items.
	FileURLs []string `json:"file_urls,omitempty"`

	// ItemURLFile and FileURLFile are the frontier files written by the
	// save step, empty when the step did not run.
	ItemURLFile string `json:"item_url_file,omitempty"`
	FileURLFile string `json:"file_url_file,omitempty"`

	// ListingPages counts listing pages visited before exhaustion.
	ListingPages int `json:"listing_pages"`

	// CrawlDuration and FetchDuration are per-stage wall-clock times.
	CrawlDuration time.Duration `json:"crawl_duration"`
	FetchDuration time.Duration `json:"fetch_duration"`

	// Downloaded, Skipped, and Failed count download outcomes. Skipped
	// means the store already marked the URL successful and the local
	// file was present.
	Downloaded int `json:"downloaded"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`

	// Failures lists the URLs that exhausted their retries, with the last
	// recorded error for each.
	Failures []DownloadFailure `json:"failures,omitempty"`

	// Error holds the run-fatal error message, if any.
	Error string `json:"error,omitempty"`

	// PerformedSteps names the pipeline steps that executed, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`
}

// DownloadFailure pairs a failed URL with its last error.
type DownloadFailure struct {
	URL       string `json:"url"`
	LastError string `json:"last_error"`
}

// NewRunReport creates a report for a run starting at the given URL.
func NewRunReport(startURL string) *RunReport {
	return &RunReport{
		StartURL:  startURL,
		StartedAt: time.Now().UTC(),
	}
}

// AddFailure records a failed download. Failures are kept sorted by URL so
// report output is deterministic regardless of fetch order.
func (r *RunReport) AddFailure(url, lastError string) {
	r.Failures = append(r.Failures, DownloadFailure{URL: url, LastError: lastError})
	sort.Slice(r.Failures, func(i, j int) bool { return r.Failures[i].URL < r.Failures[j].URL })
}

// TotalFetched returns the number of URLs the fetch stage handled.
func (r *RunReport) TotalFetched() int {
	return r.Downloaded + r.Skipped + r.Failed
}
