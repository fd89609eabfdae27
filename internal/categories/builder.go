// Package categories groups blog items into a tree keyed by slash separated
// category paths.
//
// Trees returned by Build are never mutated afterwards. Toggle returns a new
// tree that copies the nodes along the toggled path and shares every other
// subtree with the input, so a tree can be read concurrently while the UI
// derives the next one.
package categories

import (
	"path"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/goliatone/go-blog/internal/domain"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// DefaultUncategorized names the bucket for items without a category.
const DefaultUncategorized = "Uncategorized"

// Options control tree construction.
type Options struct {
	// Uncategorized names the bucket for items without any category segment.
	Uncategorized string
	// AlwaysUncategorized emits the bucket even when no item lands in it.
	AlwaysUncategorized bool
	// Locale selects the collation used to order node names, e.g. "zh-CN".
	Locale string

	// ExpandBlogID expands every node from the root down to the node that
	// holds this blog.
	ExpandBlogID string
	// ExpandPaths expands the listed category paths and their ancestors.
	ExpandPaths []string
	// ExpandFirst expands the first top-level node when nothing else was
	// expanded.
	ExpandFirst bool

	Logger interfaces.Logger
}

func (o Options) uncategorized() string {
	if name := strings.TrimSpace(o.Uncategorized); name != "" {
		return name
	}
	return DefaultUncategorized
}

// CategoryOf resolves the category path of an item: the explicit category,
// else the directory of its source path, else the uncategorized bucket.
func CategoryOf(item domain.BlogItem, uncategorized string) []string {
	if segments := Split(item.Category); len(segments) > 0 {
		return segments
	}
	if item.Path != "" {
		if dir := path.Dir(strings.ReplaceAll(item.Path, "\\", "/")); dir != "." && dir != "/" {
			if segments := Split(dir); len(segments) > 0 {
				return segments
			}
		}
	}
	if uncategorized == "" {
		uncategorized = DefaultUncategorized
	}
	return []string{uncategorized}
}

// Split breaks a category path on "/" and drops empty segments.
func Split(category string) []string {
	parts := strings.Split(category, "/")
	out := parts[:0]
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Build groups items into a sorted category tree.
func Build(items []domain.BlogItem, opts Options) []*domain.BlogCategory {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	bucket := opts.uncategorized()

	root := &domain.BlogCategory{}
	index := map[string]*domain.BlogCategory{}

	for _, item := range items {
		segments := CategoryOf(item, bucket)
		node := ensure(root, index, segments)
		node.Blogs = append(node.Blogs, item)
	}
	if opts.AlwaysUncategorized {
		ensure(root, index, []string{bucket})
	}

	sorter := newSorter(opts.Locale, logger)
	sorter.sort(root.Children)

	expanded := false
	if id := strings.TrimSpace(opts.ExpandBlogID); id != "" {
		if p, ok := PathOf(root.Children, id); ok {
			expanded = expandPath(index, p) || expanded
		} else {
			logger.Debug("categories.expand_blog_missing", "blog_id", id)
		}
	}
	for _, p := range opts.ExpandPaths {
		expanded = expandPath(index, strings.Join(Split(p), "/")) || expanded
	}
	if opts.ExpandFirst && !expanded && len(root.Children) > 0 {
		root.Children[0].Expanded = true
	}

	logger.Debug("categories.built", "items", len(items), "top_level", len(root.Children))
	return root.Children
}

func ensure(root *domain.BlogCategory, index map[string]*domain.BlogCategory, segments []string) *domain.BlogCategory {
	node := root
	for i := range segments {
		key := strings.Join(segments[:i+1], "/")
		child, ok := index[key]
		if !ok {
			child = &domain.BlogCategory{Name: segments[i], Path: key}
			index[key] = child
			node.Children = append(node.Children, child)
		}
		node = child
	}
	return node
}

func expandPath(index map[string]*domain.BlogCategory, p string) bool {
	if _, ok := index[p]; !ok || p == "" {
		return false
	}
	segments := strings.Split(p, "/")
	for i := range segments {
		index[strings.Join(segments[:i+1], "/")].Expanded = true
	}
	return true
}

type sorter struct {
	collator *collate.Collator
}

func newSorter(locale string, logger interfaces.Logger) sorter {
	tag := language.Und
	if locale = strings.TrimSpace(locale); locale != "" {
		parsed, err := language.Parse(locale)
		if err != nil {
			logger.Warn("categories.locale_invalid", "locale", locale, "error", err)
		} else {
			tag = parsed
		}
	}
	return sorter{collator: collate.New(tag)}
}

func (s sorter) sort(nodes []*domain.BlogCategory) {
	for _, node := range nodes {
		sort.SliceStable(node.Blogs, func(i, j int) bool {
			return domain.Timestamp(node.Blogs[i].Date) > domain.Timestamp(node.Blogs[j].Date)
		})
		s.sort(node.Children)
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		left, right := Count(nodes[i]) > 0, Count(nodes[j]) > 0
		if left != right {
			return left
		}
		return s.collator.CompareString(nodes[i].Name, nodes[j].Name) < 0
	})
}
