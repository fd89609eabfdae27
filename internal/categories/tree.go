package categories

import "github.com/goliatone/go-blog/internal/domain"

// Count returns the number of blogs held by node and all of its descendants.
func Count(node *domain.BlogCategory) int {
	if node == nil {
		return 0
	}
	total := len(node.Blogs)
	for _, child := range node.Children {
		total += Count(child)
	}
	return total
}

// Toggle flips Expanded on the node at categoryPath. Only the nodes from the
// root to the target are copied; all other subtrees are shared with tree. An
// unknown path returns tree itself.
func Toggle(tree []*domain.BlogCategory, categoryPath string) []*domain.BlogCategory {
	segments := Split(categoryPath)
	if len(segments) == 0 {
		return tree
	}
	next, ok := toggle(tree, segments)
	if !ok {
		return tree
	}
	return next
}

func toggle(nodes []*domain.BlogCategory, segments []string) ([]*domain.BlogCategory, bool) {
	for i, node := range nodes {
		if node.Name != segments[0] {
			continue
		}
		clone := *node
		if len(segments) == 1 {
			clone.Expanded = !clone.Expanded
		} else {
			children, ok := toggle(node.Children, segments[1:])
			if !ok {
				return nil, false
			}
			clone.Children = children
		}
		out := make([]*domain.BlogCategory, len(nodes))
		copy(out, nodes)
		out[i] = &clone
		return out, true
	}
	return nil, false
}

// Find returns the node at categoryPath, or nil.
func Find(tree []*domain.BlogCategory, categoryPath string) *domain.BlogCategory {
	segments := Split(categoryPath)
	if len(segments) == 0 {
		return nil
	}
	nodes := tree
	var found *domain.BlogCategory
	for _, segment := range segments {
		found = nil
		for _, node := range nodes {
			if node.Name == segment {
				found = node
				break
			}
		}
		if found == nil {
			return nil
		}
		nodes = found.Children
	}
	return found
}

// PathOf returns the category path of the node that holds blogID.
func PathOf(tree []*domain.BlogCategory, blogID string) (string, bool) {
	var out string
	Walk(tree, func(node *domain.BlogCategory, _ int) bool {
		for _, blog := range node.Blogs {
			if blog.ID == blogID {
				out = node.Path
				return false
			}
		}
		return true
	})
	return out, out != ""
}

// Walk visits nodes depth first in tree order. Returning false from fn stops
// the walk.
func Walk(tree []*domain.BlogCategory, fn func(node *domain.BlogCategory, depth int) bool) {
	walk(tree, 0, fn)
}

func walk(nodes []*domain.BlogCategory, depth int, fn func(*domain.BlogCategory, int) bool) bool {
	for _, node := range nodes {
		if !fn(node, depth) {
			return false
		}
		if !walk(node.Children, depth+1, fn) {
			return false
		}
	}
	return true
}

// Blogs flattens the tree into the blogs it holds, in tree order.
func Blogs(tree []*domain.BlogCategory) []domain.BlogItem {
	var out []domain.BlogItem
	Walk(tree, func(node *domain.BlogCategory, _ int) bool {
		out = append(out, node.Blogs...)
		return true
	})
	return out
}
