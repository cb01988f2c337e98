package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/docpull/docpull/internal/model"
)

// SimpleWriter outputs human-readable text reports.
//
// Design decision: plain text with ASCII formatting rather than ANSI
// colors because it works in every terminal and pipes cleanly into files
// and other tools.
type SimpleWriter struct {
	baseWriter

	// verbose enables the full URL lists in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output including the discovered URL lists.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	var b strings.Builder

	b.WriteString("docpull run report\n")
	b.WriteString("==================\n")
	fmt.Fprintf(&b, "Start URL:      %s\n", report.StartURL)
	fmt.Fprintf(&b, "Started at:     %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST"))
	if report.Error != "" {
		fmt.Fprintf(&b, "Status:         FAILED - %s\n", report.Error)
	} else {
		b.WriteString("Status:         complete\n")
	}
	b.WriteString("\n")

	b.WriteString("Crawl\n")
	b.WriteString("-----\n")
	fmt.Fprintf(&b, "Listing pages:  %d\n", report.ListingPages)
	fmt.Fprintf(&b, "Item URLs:      %d\n", len(report.ItemURLs))
	fmt.Fprintf(&b, "File URLs:      %d\n", len(report.FileURLs))
	if report.CrawlDuration > 0 {
		fmt.Fprintf(&b, "Duration:       %s\n", report.CrawlDuration)
	}
	if report.ItemURLFile != "" {
		fmt.Fprintf(&b, "Item URL file:  %s\n", report.ItemURLFile)
	}
	if report.FileURLFile != "" {
		fmt.Fprintf(&b, "File URL file:  %s\n", report.FileURLFile)
	}
	b.WriteString("\n")

	b.WriteString("Fetch\n")
	b.WriteString("-----\n")
	fmt.Fprintf(&b, "Downloaded:     %d\n", report.Downloaded)
	fmt.Fprintf(&b, "Skipped:        %d\n", report.Skipped)
	fmt.Fprintf(&b, "Failed:         %d\n", report.Failed)
	if report.FetchDuration > 0 {
		fmt.Fprintf(&b, "Duration:       %s\n", report.FetchDuration)
	}

	if len(report.Failures) > 0 {
		b.WriteString("\nFailures\n")
		b.WriteString("--------\n")
		for _, f := range report.Failures {
			fmt.Fprintf(&b, "  %s\n    %s\n", f.URL, f.LastError)
		}
	}

	if w.verbose {
		if len(report.ItemURLs) > 0 {
			b.WriteString("\nItem URLs\n")
			b.WriteString("---------\n")
			for _, u := range report.ItemURLs {
				fmt.Fprintf(&b, "  %s\n", u)
			}
		}
		if len(report.FileURLs) > 0 {
			b.WriteString("\nFile URLs\n")
			b.WriteString("---------\n")
			for _, u := range report.FileURLs {
				fmt.Fprintf(&b, "  %s\n", u)
			}
		}
	}

	return io.WriteString(w.output, b.String())
}
