package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/goliatone/go-blog/internal/domain"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// DefaultExtensions are enabled when ParseOptions names none.
var DefaultExtensions = []string{"table", "strikethrough", "linkify"}

// Config wires a Renderer.
type Config struct {
	Parser    interfaces.ParseOptions
	Sanitizer interfaces.HTMLSanitizer
	Logger    interfaces.Logger
}

// Renderer converts markdown into HTML. It holds no per-call state and can be
// shared across goroutines.
type Renderer struct {
	defaults  interfaces.ParseOptions
	engine    goldmark.Markdown
	sanitizer interfaces.HTMLSanitizer
	logger    interfaces.Logger
}

var _ interfaces.MarkdownParser = (*Renderer)(nil)

// NewRenderer builds a Renderer. A missing sanitizer defaults to NewSanitizer.
func NewRenderer(cfg Config) *Renderer {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	sanitizer := cfg.Sanitizer
	if sanitizer == nil {
		sanitizer = NewSanitizer()
	}
	return &Renderer{
		defaults:  cfg.Parser,
		engine:    newEngine(cfg.Parser),
		sanitizer: sanitizer,
		logger:    logger,
	}
}

// Parse renders markdown with the renderer's default options.
func (r *Renderer) Parse(markdown []byte) ([]byte, error) {
	return convert(r.engine, markdown)
}

// ParseWithOptions renders markdown with opts layered over the defaults.
func (r *Renderer) ParseWithOptions(markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	return convert(newEngine(mergeOptions(r.defaults, opts)), markdown)
}

// Render returns unsanitized HTML. Raw HTML in the source is passed through,
// so the result must not reach a page without RenderSafe or Sanitize.
func (r *Renderer) Render(markdown string) (string, error) {
	out, err := r.Parse([]byte(markdown))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// RenderSafe renders markdown and reduces the output to the allow-list.
func (r *Renderer) RenderSafe(markdown string) (string, error) {
	out, err := r.Parse([]byte(markdown))
	if err != nil {
		return "", err
	}
	clean := r.sanitizer.Sanitize(out)
	if stripped := len(out) - len(clean); stripped > 0 {
		r.logger.Trace("markdown.sanitized", "bytes_removed", stripped)
	}
	return string(clean), nil
}

// ExtractTOC returns the outline of markdown. See the package level ExtractTOC.
func (r *Renderer) ExtractTOC(markdown string) []domain.TOCItem {
	return ExtractTOC(markdown)
}

func convert(engine goldmark.Markdown, markdown []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := engine.Convert(markdown, &buf); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return buf.Bytes(), nil
}

func newEngine(opts interfaces.ParseOptions) goldmark.Markdown {
	extenders := collectExtensions(opts.Extensions)
	if opts.Typographer == nil || *opts.Typographer {
		extenders = append(extenders, extension.Typographer)
	}

	rendererOptions := []renderer.Option{html.WithUnsafe()}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}

	return goldmark.New(
		goldmark.WithExtensions(extenders...),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(util.Prioritized(headingIDs{}, 100)),
		),
		goldmark.WithRendererOptions(rendererOptions...),
	)
}

func mergeOptions(base, override interfaces.ParseOptions) interfaces.ParseOptions {
	result := base
	if len(override.Extensions) > 0 {
		result.Extensions = append([]string(nil), override.Extensions...)
	}
	if override.HardWraps {
		result.HardWraps = true
	}
	if override.Typographer != nil {
		result.Typographer = override.Typographer
	}
	return result
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		names = DefaultExtensions
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := seen[key]; ok || key == "" {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}
	return extenders
}
