package categories

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/goliatone/go-blog/internal/domain"
)

func sampleTree() []*domain.BlogCategory {
	return Build([]domain.BlogItem{
		item("a", "Alpha", "2024-01-01"),
		item("b", "Beta/One", "2024-01-01"),
		item("c", "Beta/Two", "2024-01-01"),
		item("d", "Gamma/Deep/Er", "2024-01-01"),
	}, Options{})
}

func TestToggleFlipsOnlyTarget(t *testing.T) {
	tree := sampleTree()
	next := Toggle(tree, "Beta/Two")

	if !Find(next, "Beta/Two").Expanded {
		t.Fatalf("expected Beta/Two expanded in new tree")
	}
	if Find(tree, "Beta/Two").Expanded {
		t.Fatalf("original tree must not change")
	}
	if Find(next, "Beta").Expanded {
		t.Fatalf("ancestors keep their flag")
	}
	if next[0] != tree[0] || next[2] != tree[2] {
		t.Fatalf("expected untouched top-level nodes to be shared")
	}
	if next[1] == tree[1] {
		t.Fatalf("expected Beta to be copied")
	}
	if Find(next, "Beta/One") != Find(tree, "Beta/One") {
		t.Fatalf("expected sibling subtree to be shared")
	}

	back := Toggle(next, "Beta/Two")
	if Find(back, "Beta/Two").Expanded {
		t.Fatalf("expected second toggle to collapse")
	}
}

func TestToggleUnknownPathReturnsSameTree(t *testing.T) {
	tree := sampleTree()
	next := Toggle(tree, "Beta/Missing")
	if len(next) != len(tree) {
		t.Fatalf("unexpected length")
	}
	for i := range tree {
		if next[i] != tree[i] {
			t.Fatalf("expected unchanged tree")
		}
	}
}

func TestToggleNeverMutatesInput(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tree := sampleTree()
		target := rapid.SampledFrom([]string{"Alpha", "Beta", "Beta/One", "Beta/Two", "Gamma", "Gamma/Deep", "Gamma/Deep/Er", "Nope"}).Draw(t, "path")

		type snapshot struct {
			expanded bool
			children int
		}
		before := map[*domain.BlogCategory]snapshot{}
		Walk(tree, func(node *domain.BlogCategory, _ int) bool {
			before[node] = snapshot{node.Expanded, len(node.Children)}
			return true
		})

		next := Toggle(tree, target)

		Walk(tree, func(node *domain.BlogCategory, _ int) bool {
			if before[node] != (snapshot{node.Expanded, len(node.Children)}) {
				t.Fatalf("node %s mutated", node.Path)
			}
			return true
		})

		segments := Split(target)
		for i, node := range tree {
			if node.Name != segments[0] && next[i] != node {
				t.Fatalf("expected %s shared", node.Path)
			}
		}
	})
}

func TestPathOfAndFind(t *testing.T) {
	tree := sampleTree()
	p, ok := PathOf(tree, "d")
	if !ok || p != "Gamma/Deep/Er" {
		t.Fatalf("unexpected path %q %v", p, ok)
	}
	if _, ok := PathOf(tree, "zzz"); ok {
		t.Fatalf("expected missing blog")
	}
	if Find(tree, "") != nil || Find(tree, "Gamma/Nope") != nil {
		t.Fatalf("expected nil for unknown paths")
	}
}

func TestWalkStopsEarly(t *testing.T) {
	visited := 0
	Walk(sampleTree(), func(*domain.BlogCategory, int) bool {
		visited++
		return visited < 2
	})
	if visited != 2 {
		t.Fatalf("expected walk to stop after 2 nodes, got %d", visited)
	}
}
