package log

import (
	"context"
	"io"
	"log/slog"
)

// DefaultMaxValueLength is the default cap on a logged attribute value.
// Long enough to keep full portal URLs readable, short enough that an HTML
// error body stored as an error message cannot flood the log.
const DefaultMaxValueLength = 512

// Ellipsis marks a truncated value.
const Ellipsis = "..."

// TruncatingHandler wraps an slog.Handler and caps the length of string
// attribute values before passing records on.
//
// Design decision: a handler wrapper rather than truncation at each call
// site because:
//  1. It integrates with standard slog APIs and any underlying handler
//  2. Call sites stay clean; nobody has to remember to trim
//  3. Group attributes are handled recursively in one place
type TruncatingHandler struct {
	// handler is the underlying slog handler receiving trimmed records.
	handler slog.Handler

	// maxLen is the maximum byte length of a string attribute value.
	maxLen int
}

// TruncatingOption configures a TruncatingHandler.
type TruncatingOption func(*TruncatingHandler)

// WithMaxValueLength overrides the attribute value cap.
func WithMaxValueLength(n int) TruncatingOption {
	return func(h *TruncatingHandler) {
		if n > len(Ellipsis) {
			h.maxLen = n
		}
	}
}

// NewTruncatingHandler creates a TruncatingHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewTruncatingHandler(handler slog.Handler, opts ...TruncatingOption) *TruncatingHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	h := &TruncatingHandler{handler: handler, maxLen: DefaultMaxValueLength}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
func (h *TruncatingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle trims the record's attributes and passes it to the underlying handler.
func (h *TruncatingHandler) Handle(ctx context.Context, r slog.Record) error {
	trimmed := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		trimmed.AddAttrs(h.trimAttr(a))
		return true
	})
	return h.handler.Handle(ctx, trimmed)
}

// WithAttrs returns a new handler with the given attributes added, trimmed.
func (h *TruncatingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	trimmed := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		trimmed[i] = h.trimAttr(a)
	}
	return &TruncatingHandler{handler: h.handler.WithAttrs(trimmed), maxLen: h.maxLen}
}

// WithGroup returns a new handler with the given group name.
func (h *TruncatingHandler) WithGroup(name string) slog.Handler {
	return &TruncatingHandler{handler: h.handler.WithGroup(name), maxLen: h.maxLen}
}

// trimAttr caps a single attribute, recursing into groups.
func (h *TruncatingHandler) trimAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		trimmed := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			trimmed[i] = h.trimAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(trimmed...)}
	}

	if a.Value.Kind() == slog.KindString {
		s := a.Value.String()
		if len(s) > h.maxLen {
			return slog.String(a.Key, s[:h.maxLen-len(Ellipsis)]+Ellipsis)
		}
	}
	return a
}

// NewLogger creates a text-format slog.Logger with value truncation.
// Verbose selects slog.LevelDebug, otherwise slog.LevelInfo: the crawl and
// download loops log per-page and per-URL progress at Info, which is the
// primary user-visible output of a run.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	textHandler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewTruncatingHandler(textHandler))
}

// NewJSONLogger creates a JSON-format slog.Logger with value truncation.
// Useful when docpull runs under a log aggregator.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	jsonHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewTruncatingHandler(jsonHandler))
}
