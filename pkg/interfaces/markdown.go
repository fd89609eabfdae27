package interfaces

import (
	"context"
	"io"
)

// MarkdownParser converts raw Markdown bytes into HTML.
type MarkdownParser interface {
	// Parse converts Markdown into HTML using the parser's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts Markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown rendering. Option names stay readable so
// they can be bound from configuration files and CLI flags.
type ParseOptions struct {
	Extensions []string
	HardWraps  bool
	// Typographer replaces straight quotes and dashes with typographic ones.
	Typographer *bool
}

// HTMLSanitizer strips markup down to an allow-list.
type HTMLSanitizer interface {
	Sanitize(html []byte) []byte
}

// CodeHighlighter upgrades plain code blocks inside an HTML fragment.
type CodeHighlighter interface {
	Highlight(ctx context.Context, fragment string) (string, error)
	// CSS writes the stylesheet matching the highlighted markup.
	CSS(w io.Writer) error
}
