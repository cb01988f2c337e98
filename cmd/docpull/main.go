// Package main provides the entry point for the docpull CLI.
//
// docpull crawls paginated document portals, discovers item and file
// URLs, and downloads the files with verification and durable
// idempotency.
//
// Usage:
//
//	docpull run <start-url>
//	docpull crawl <start-url>
//	docpull fetch <url-list-file>
//
// See --help for all available options.
package main

// main is the entry point for docpull.
func main() {
	Execute()
}
