package markdown

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-blog/internal/domain"
)

// outlineEngine parses without the typographer so heading text stays free of
// HTML entities.
var outlineEngine = goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough))

type tocNode struct {
	item     domain.TOCItem
	children []*tocNode
}

// ExtractTOC returns the heading outline of markdown without rendering it.
func ExtractTOC(markdown string) []domain.TOCItem {
	source := []byte(markdown)
	doc := outlineEngine.Parser().Parse(text.NewReader(source))

	var roots []*tocNode
	var stack []*tocNode
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := node.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		entry := &tocNode{item: domain.TOCItem{
			ID:    Slug(headingSource(heading, source)),
			Text:  plainText(heading, source),
			Level: heading.Level,
		}}
		for len(stack) > 0 && stack[len(stack)-1].item.Level >= entry.item.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, entry)
		} else {
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, entry)
		}
		stack = append(stack, entry)
		return ast.WalkSkipChildren, nil
	})
	return flatten(roots)
}

func flatten(nodes []*tocNode) []domain.TOCItem {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]domain.TOCItem, len(nodes))
	for i, node := range nodes {
		out[i] = node.item
		out[i].Children = flatten(node.children)
	}
	return out
}
