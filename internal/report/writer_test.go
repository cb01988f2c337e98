package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/docpull/docpull/internal/model"
)

// sampleReport builds a report with every section populated.
func sampleReport() *model.RunReport {
	r := model.NewRunReport("https://portal.example/Laws.aspx")
	r.StartedAt = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	r.ItemURLs = []string{
		"https://portal.example/LawItem.aspx?itemid=01",
		"https://portal.example/LawItem.aspx?itemid=02",
	}
	r.FileURLs = []string{
		"https://portal.example/doc/01.pdf",
		"https://portal.example/doc/02.pdf",
		"https://portal.example/doc/03.pdf",
	}
	r.ListingPages = 2
	r.CrawlDuration = 3 * time.Second
	r.FetchDuration = 12 * time.Second
	r.Downloaded = 1
	r.Skipped = 1
	r.Failed = 1
	r.AddFailure("https://portal.example/doc/03.pdf", "downloaded file is too small: 120 bytes, minimum 2048")
	r.PerformedSteps = []string{"crawl", "save_frontier", "fetch"}
	return r
}

// TestSimpleWriter_Write verifies the text rendering.
func TestSimpleWriter_Write(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewSimpleWriter(&buf)

	n, err := w.Write(sampleReport())
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if n != buf.Len() {
		t.Errorf("expected %d bytes reported, got %d", buf.Len(), n)
	}

	out := buf.String()
	for _, want := range []string{
		"https://portal.example/Laws.aspx",
		"Listing pages:  2",
		"Downloaded:     1",
		"Failed:         1",
		"downloaded file is too small",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
	if strings.Contains(out, "itemid=01") {
		t.Error("expected URL lists to be hidden without verbose")
	}
}

// TestSimpleWriter_Write_verbose verifies that verbose mode includes the
// URL lists.
func TestSimpleWriter_Write_verbose(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewSimpleWriter(&buf, WithVerbose(true))

	if _, err := w.Write(sampleReport()); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	for _, want := range []string{"itemid=01", "itemid=02", "doc/01.pdf"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected verbose output to contain %q", want)
		}
	}
}

// TestJSONWriter_Write verifies that the output parses back with the
// expected fields.
func TestJSONWriter_Write(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewJSONWriter(&buf)

	if _, err := w.Write(sampleReport()); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["start_url"] != "https://portal.example/Laws.aspx" {
		t.Errorf("unexpected start_url: %v", decoded["start_url"])
	}
	if decoded["downloaded"] != float64(1) {
		t.Errorf("unexpected downloaded count: %v", decoded["downloaded"])
	}
	failures, ok := decoded["failures"].([]any)
	if !ok || len(failures) != 1 {
		t.Errorf("expected 1 failure in JSON output, got %v", decoded["failures"])
	}
}

// TestJSONWriter_Write_prettyPrint verifies indented output.
func TestJSONWriter_Write_prettyPrint(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewJSONWriter(&buf, WithPrettyPrint())

	if _, err := w.Write(sampleReport()); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"start_url\"") {
		t.Error("expected indented JSON output")
	}
}

// TestMarkdownWriter_Write verifies the markdown sections.
func TestMarkdownWriter_Write(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewMarkdownWriter(&buf)

	if _, err := w.Write(sampleReport()); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# docpull Run Report",
		"## Crawl",
		"## Fetch",
		"## Failures",
		"`https://portal.example/doc/03.pdf`",
		"pie",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected markdown output to contain %q", want)
		}
	}
}

// TestMarkdownWriter_Write_noFailures verifies the clean-run rendering.
func TestMarkdownWriter_Write_noFailures(t *testing.T) {
	t.Parallel()

	r := sampleReport()
	r.Failed = 0
	r.Failures = nil

	var buf bytes.Buffer
	w := NewMarkdownWriter(&buf)
	if _, err := w.Write(r); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Every fetched URL verified successfully.") {
		t.Error("expected the clean-run tip")
	}
}

// TestMultiWriter_Write verifies fan-out to several writers.
func TestMultiWriter_Write(t *testing.T) {
	t.Parallel()

	var text, jsonBuf bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&jsonBuf))

	n, err := mw.Write(sampleReport())
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if n != text.Len()+jsonBuf.Len() {
		t.Errorf("expected total %d bytes, got %d", text.Len()+jsonBuf.Len(), n)
	}
	if text.Len() == 0 || jsonBuf.Len() == 0 {
		t.Error("expected both writers to receive output")
	}
}
