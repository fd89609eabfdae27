// Package highlight upgrades plain code blocks in rendered HTML to tokenized,
// class based markup produced by chroma.
package highlight

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

const (
	// MarkerAttr flags a block that has already been upgraded.
	MarkerAttr     = "data-highlighted"
	languagePrefix = "language-"
	chromaClass    = "chroma"
)

// DefaultStyle is used when Config.Style is empty or unknown.
const DefaultStyle = "github"

// SupportedLanguages is the fixed set of languages that get highlighted.
var SupportedLanguages = []string{
	"bash", "sh", "javascript", "typescript", "json", "html", "css",
	"python", "java", "go", "rust", "markdown", "yaml", "toml", "ini",
	"xml", "sql", "vim", "docker",
}

// Config configures a Highlighter.
type Config struct {
	Style string
	// Languages overrides SupportedLanguages.
	Languages []string
	Logger    interfaces.Logger
	// OnFailure is called once per block whose highlighting failed.
	OnFailure func(language string, err error)
}

// Highlighter is safe for concurrent use. The chroma lexers, style and
// formatter are resolved on first use and shared afterwards.
type Highlighter struct {
	cfg    Config
	logger interfaces.Logger

	once   sync.Once
	engine *engine
}

type engine struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
	lexers    map[string]chroma.Lexer
}

var _ interfaces.CodeHighlighter = (*Highlighter)(nil)

// New constructs a Highlighter. No chroma state is touched until first use.
func New(cfg Config) *Highlighter {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = SupportedLanguages
	}
	return &Highlighter{cfg: cfg, logger: logger}
}

func (h *Highlighter) load() *engine {
	h.once.Do(func() {
		name := strings.ToLower(strings.TrimSpace(h.cfg.Style))
		if name == "" {
			name = DefaultStyle
		}
		style, ok := styles.Registry[name]
		if !ok {
			h.logger.Warn("highlight.style_unknown", "style", name, "fallback", styles.Fallback.Name)
			style = styles.Fallback
		}

		known := make(map[string]chroma.Lexer, len(h.cfg.Languages))
		for _, lang := range h.cfg.Languages {
			key := strings.ToLower(strings.TrimSpace(lang))
			lexer := lexers.Get(key)
			if lexer == nil {
				h.logger.Warn("highlight.lexer_missing", "language", key)
				continue
			}
			known[key] = chroma.Coalesce(lexer)
		}

		h.engine = &engine{
			style:     style,
			formatter: chromahtml.New(chromahtml.WithClasses(true), chromahtml.PreventSurroundingPre(true)),
			lexers:    known,
		}
		h.logger.Debug("highlight.engine_ready", "style", style.Name, "languages", len(known))
	})
	return h.engine
}

// Supported reports whether lang will be highlighted.
func (h *Highlighter) Supported(lang string) bool {
	_, ok := h.load().lexers[strings.ToLower(lang)]
	return ok
}

// Languages returns the sorted list of languages with a resolved lexer.
func (h *Highlighter) Languages() []string {
	eng := h.load()
	out := make([]string, 0, len(eng.lexers))
	for lang := range eng.lexers {
		out = append(out, lang)
	}
	slices.Sort(out)
	return out
}

// CSS writes the stylesheet for the class names emitted by Highlight.
func (h *Highlighter) CSS(w io.Writer) error {
	eng := h.load()
	return eng.formatter.WriteCSS(w, eng.style)
}

// Highlight tokenizes every "pre > code.language-X" block in fragment whose
// language is supported. Blocks already carrying MarkerAttr are left alone, as
// are blocks in other languages. A block that fails to highlight is logged and
// stays plain; only a fragment that cannot be parsed or a done ctx returns an
// error, together with the untouched input.
func (h *Highlighter) Highlight(ctx context.Context, fragment string) (string, error) {
	if !strings.Contains(fragment, languagePrefix) {
		return fragment, nil
	}
	container := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), container)
	if err != nil {
		return fragment, fmt.Errorf("highlight: parse fragment: %w", err)
	}

	eng := h.load()
	changed := false
	for _, block := range findBlocks(nodes) {
		if err := ctx.Err(); err != nil {
			return fragment, err
		}
		lexer, ok := eng.lexers[block.language]
		if !ok {
			h.logger.Trace("highlight.language_skipped", "language", block.language)
			continue
		}
		if err := h.upgrade(eng, lexer, block); err != nil {
			h.logger.Warn("highlight.block_failed", "language", block.language, "error", err)
			if h.cfg.OnFailure != nil {
				h.cfg.OnFailure(block.language, err)
			}
			continue
		}
		changed = true
	}
	if !changed {
		return fragment, nil
	}

	var buf bytes.Buffer
	for _, node := range nodes {
		if err := html.Render(&buf, node); err != nil {
			return fragment, fmt.Errorf("highlight: render fragment: %w", err)
		}
	}
	return buf.String(), nil
}

type codeBlock struct {
	pre      *html.Node
	code     *html.Node
	language string
}

func findBlocks(nodes []*html.Node) []codeBlock {
	var blocks []codeBlock
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Pre {
			if block, ok := asBlock(n); ok {
				blocks = append(blocks, block)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			visit(child)
		}
	}
	for _, n := range nodes {
		visit(n)
	}
	return blocks
}

func asBlock(pre *html.Node) (codeBlock, bool) {
	if _, marked := attr(pre, MarkerAttr); marked || hasClass(pre, chromaClass) {
		return codeBlock{}, false
	}
	var code *html.Node
	for child := pre.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode {
			if child.DataAtom != atom.Code || code != nil {
				return codeBlock{}, false
			}
			code = child
		}
	}
	if code == nil {
		return codeBlock{}, false
	}
	class, _ := attr(code, "class")
	for _, name := range strings.Fields(class) {
		if lang, ok := strings.CutPrefix(name, languagePrefix); ok && lang != "" {
			return codeBlock{pre: pre, code: code, language: strings.ToLower(lang)}, true
		}
	}
	return codeBlock{}, false
}

// upgrade swaps the code element's children for chroma markup. Panics from
// lexers are turned into errors so one block cannot abort the document.
func (h *Highlighter) upgrade(eng *engine, lexer chroma.Lexer, block codeBlock) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("highlight: panic: %v", r)
		}
	}()

	source := textContent(block.code)
	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return fmt.Errorf("highlight: tokenise: %w", err)
	}
	var buf bytes.Buffer
	if err := eng.formatter.Format(&buf, eng.style, iterator); err != nil {
		return fmt.Errorf("highlight: format: %w", err)
	}
	tokens, err := html.ParseFragment(&buf, block.code)
	if err != nil {
		return fmt.Errorf("highlight: parse tokens: %w", err)
	}

	for child := block.code.FirstChild; child != nil; {
		next := child.NextSibling
		block.code.RemoveChild(child)
		child = next
	}
	for _, token := range tokens {
		block.code.AppendChild(token)
	}
	addClass(block.pre, chromaClass)
	setAttr(block.pre, MarkerAttr, "true")
	return nil
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			visit(child)
		}
	}
	visit(n)
	return b.String()
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, value string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

func hasClass(n *html.Node, class string) bool {
	value, _ := attr(n, "class")
	return slices.Contains(strings.Fields(value), class)
}

func addClass(n *html.Node, class string) {
	if hasClass(n, class) {
		return
	}
	value, _ := attr(n, "class")
	setAttr(n, "class", strings.TrimSpace(value+" "+class))
}
