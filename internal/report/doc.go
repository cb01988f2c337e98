// Package report renders run results in different output formats.
//
// This package contains writers for different destinations:
//   - SimpleWriter: human-readable text for terminal display
//   - JSONWriter: structured JSON for tool integration
//   - MarkdownWriter: Markdown for documentation and sharing
//
// Design decision: report rendering is separated from the report data
// (which lives in the model package) so new output formats can be added
// without touching the run itself. Writers implement a common interface
// and compose through MultiWriter for terminal-plus-file output.
package report
