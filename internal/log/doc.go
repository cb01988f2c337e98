// Package log provides structured logging for docpull built on log/slog.
//
// The package wraps a standard slog handler with a TruncatingHandler that
// caps oversized attribute values before they reach the output. Crawl and
// download logs carry URLs, href lists, and stored error text that can run
// to kilobytes; truncation keeps log lines readable and log volume bounded
// without dropping the attributes entirely.
//
// Usage:
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
package log
