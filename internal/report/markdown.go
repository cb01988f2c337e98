package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/docpull/docpull/internal/model"
)

// MarkdownWriter outputs reports in Markdown format for documentation and
// sharing.
//
// Design decision: the nao1215/markdown library gives type-safe markdown
// generation with tables, alerts, and mermaid charts, so the layout code
// stays free of string templating.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeCrawl(md, report)
	w.writeFetch(md, report)
	w.writeFailures(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the run overview table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RunReport) {
	md.H1("docpull Run Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Start URL", "`" + report.StartURL + "`"},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Steps", joinOrDash(report.PerformedSteps)},
			{"Status", w.statusText(report)},
		},
	})
	md.PlainText("")
}

// statusText returns the status cell based on report state.
func (w *MarkdownWriter) statusText(report *model.RunReport) string {
	if report.Error != "" {
		return "❌ Failed - " + report.Error
	}
	if report.Failed > 0 {
		return "⚠️ Complete with failures"
	}
	return "✅ Complete"
}

// writeCrawl writes the crawl section.
func (w *MarkdownWriter) writeCrawl(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Crawl")
	md.PlainText("")

	rows := [][]string{
		{"Listing pages", strconv.Itoa(report.ListingPages)},
		{"Item URLs", strconv.Itoa(len(report.ItemURLs))},
		{"File URLs", strconv.Itoa(len(report.FileURLs))},
	}
	if report.CrawlDuration > 0 {
		rows = append(rows, []string{"Duration", report.CrawlDuration.String()})
	}
	if report.ItemURLFile != "" {
		rows = append(rows, []string{"Item URL file", "`" + report.ItemURLFile + "`"})
	}
	if report.FileURLFile != "" {
		rows = append(rows, []string{"File URL file", "`" + report.FileURLFile + "`"})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFetch writes the fetch section with an outcome distribution chart.
func (w *MarkdownWriter) writeFetch(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Fetch")
	md.PlainText("")

	rows := [][]string{
		{"Downloaded", strconv.Itoa(report.Downloaded)},
		{"Skipped", strconv.Itoa(report.Skipped)},
		{"Failed", strconv.Itoa(report.Failed)},
		{"**Total**", "**" + strconv.Itoa(report.TotalFetched()) + "**"},
	}
	if report.FetchDuration > 0 {
		rows = append(rows, []string{"Duration", report.FetchDuration.String()})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if report.TotalFetched() > 0 {
		w.writePieChart(md, report)
	}
}

// writePieChart writes a mermaid pie chart of fetch outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.RunReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Fetch Outcome Distribution"),
		piechart.WithShowData(true),
	)

	if report.Downloaded > 0 {
		chart.LabelAndIntValue("Downloaded", uint64(report.Downloaded))
	}
	if report.Skipped > 0 {
		chart.LabelAndIntValue("Skipped", uint64(report.Skipped))
	}
	if report.Failed > 0 {
		chart.LabelAndIntValue("Failed", uint64(report.Failed))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFailures writes the per-URL failure table.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Failures")
	md.PlainText("")

	if len(report.Failures) == 0 {
		md.Tip("Every fetched URL verified successfully.")
		md.PlainText("")
		return
	}

	md.Warningf("%d URL(s) exhausted their retries.", len(report.Failures))
	md.PlainText("")

	rows := make([][]string, 0, len(report.Failures))
	for _, f := range report.Failures {
		rows = append(rows, []string{"`" + f.URL + "`", f.LastError})
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Last Error"},
		Rows:   rows,
	})
	md.PlainText("")
}

// joinOrDash renders a list cell, or a dash when empty.
func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	out := values[0]
	for _, v := range values[1:] {
		out += ", " + v
	}
	return out
}
