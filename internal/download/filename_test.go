package download

import (
	"strings"
	"testing"
)

// TestDeriveFilename verifies the URL-to-filename mapping.
func TestDeriveFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "plain file path",
			url:  "https://portal.example/docs/law_2001.pdf",
			want: "law_2001.pdf",
		},
		{
			name: "query stripped",
			url:  "https://portal.example/docs/law_2001.pdf?version=2&lang=he",
			want: "law_2001.pdf",
		},
		{
			name: "fragment stripped",
			url:  "https://portal.example/docs/law_2001.pdf#page=4",
			want: "law_2001.pdf",
		},
		{
			name: "unsafe characters sanitized",
			url:  "https://portal.example/docs/law%202001%20(final).pdf",
			want: "law_2001__final_.pdf",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := DeriveFilename(tt.url, ".pdf"); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestDeriveFilename_normalization verifies that the same name in
// different Unicode compositions maps to one filename.
func TestDeriveFilename_normalization(t *testing.T) {
	t.Parallel()

	precomposed := "https://portal.example/docs/résumé.pdf"
	decomposed := "https://portal.example/docs/résumé.pdf"

	a := DeriveFilename(precomposed, ".pdf")
	b := DeriveFilename(decomposed, ".pdf")
	if a != b {
		t.Errorf("expected one filename for both compositions, got %q and %q", a, b)
	}
}

// TestDeriveFilename_fallback verifies the hash fallback for URLs with no
// usable basename.
func TestDeriveFilename_fallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
	}{
		{"directory url", "https://portal.example/docs/"},
		{"root url", "https://portal.example/"},
		{"separators only", "https://portal.example/docs/---"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := DeriveFilename(tt.url, ".pdf")
			if !strings.HasPrefix(got, "file_") || !strings.HasSuffix(got, ".pdf") {
				t.Errorf("expected a hash fallback name, got %q", got)
			}
			if again := DeriveFilename(tt.url, ".pdf"); again != got {
				t.Errorf("fallback name not deterministic: %q vs %q", got, again)
			}
		})
	}
}
