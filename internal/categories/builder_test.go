package categories

import (
	"fmt"
	"sort"
	"testing"

	"pgregory.net/rapid"

	"github.com/goliatone/go-blog/internal/domain"
)

func item(id, category, date string) domain.BlogItem {
	return domain.BlogItem{ID: id, Title: id, Date: date, Category: category}
}

func TestBuildNestsChildUnderParent(t *testing.T) {
	tree := Build([]domain.BlogItem{
		item("go-intro", "Tech/Go", "2024-01-02"),
		item("tech-news", "Tech", "2024-01-01"),
	}, Options{})

	if len(tree) != 1 || tree[0].Name != "Tech" {
		t.Fatalf("expected single Tech root, got %#v", tree)
	}
	tech := tree[0]
	if len(tech.Blogs) != 1 || tech.Blogs[0].ID != "tech-news" {
		t.Fatalf("expected tech-news attached to Tech, got %#v", tech.Blogs)
	}
	if len(tech.Children) != 1 || tech.Children[0].Name != "Go" || tech.Children[0].Path != "Tech/Go" {
		t.Fatalf("expected Go child, got %#v", tech.Children)
	}
	if got := tech.Children[0].Blogs; len(got) != 1 || got[0].ID != "go-intro" {
		t.Fatalf("expected go-intro under Go, got %#v", got)
	}
	if Count(tech) != 2 {
		t.Fatalf("expected Count 2, got %d", Count(tech))
	}
}

func TestBuildFallsBackToPathAndBucket(t *testing.T) {
	tree := Build([]domain.BlogItem{
		{ID: "a", Path: "notes/daily/a.md", Date: "2024-01-01"},
		{ID: "b", Path: "b.md", Date: "2024-01-01"},
		{ID: "c", Category: "//", Date: "2024-01-01"},
	}, Options{Uncategorized: "Misc"})

	if n := Find(tree, "notes/daily"); n == nil || len(n.Blogs) != 1 || n.Blogs[0].ID != "a" {
		t.Fatalf("expected a under notes/daily, got %#v", n)
	}
	misc := Find(tree, "Misc")
	if misc == nil || len(misc.Blogs) != 2 {
		t.Fatalf("expected b and c in Misc bucket, got %#v", misc)
	}
}

func TestBuildDropsEmptySegments(t *testing.T) {
	tree := Build([]domain.BlogItem{item("x", "/Tech//Go/", "2024-01-01")}, Options{})
	if Find(tree, "Tech/Go") == nil {
		t.Fatalf("expected Tech/Go node")
	}
}

func TestBuildSortsBlogsByDateStable(t *testing.T) {
	tree := Build([]domain.BlogItem{
		item("old", "A", "2020-01-01"),
		item("bad", "A", "not-a-date"),
		item("new", "A", "2024-05-01"),
		item("same-1", "A", "2022-01-01"),
		item("same-2", "A", "2022-01-01"),
		item("ancient", "A", "1800-01-01"),
	}, Options{})

	var got []string
	for _, blog := range tree[0].Blogs {
		got = append(got, blog.ID)
	}
	want := []string{"new", "same-1", "same-2", "old", "bad", "ancient"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestBuildOrdersEmptyBucketLast(t *testing.T) {
	tree := Build([]domain.BlogItem{item("z", "Zeta", "2024-01-01")}, Options{
		Uncategorized:       "Aaa",
		AlwaysUncategorized: true,
	})
	if len(tree) != 2 || tree[0].Name != "Zeta" || tree[1].Name != "Aaa" {
		t.Fatalf("expected non-empty Zeta before empty bucket, got %s, %s", tree[0].Name, tree[1].Name)
	}
}

func TestBuildUsesLocaleCollation(t *testing.T) {
	tree := Build([]domain.BlogItem{
		item("1", "banana", "2024-01-01"),
		item("2", "Apple", "2024-01-01"),
		item("3", "cherry", "2024-01-01"),
	}, Options{Locale: "en"})

	names := []string{tree[0].Name, tree[1].Name, tree[2].Name}
	if fmt.Sprint(names) != "[Apple banana cherry]" {
		t.Fatalf("expected collated order, got %v", names)
	}
}

func TestBuildExpandsPathToBlog(t *testing.T) {
	tree := Build([]domain.BlogItem{
		item("deep", "Tech/Go/Tips", "2024-01-01"),
		item("other", "Life", "2024-01-01"),
	}, Options{ExpandBlogID: "deep"})

	for _, p := range []string{"Tech", "Tech/Go", "Tech/Go/Tips"} {
		if n := Find(tree, p); n == nil || !n.Expanded {
			t.Fatalf("expected %s expanded", p)
		}
	}
	if Find(tree, "Life").Expanded {
		t.Fatalf("expected Life collapsed")
	}
}

func TestBuildExpandFirstOnlyWhenNothingElse(t *testing.T) {
	items := []domain.BlogItem{item("a", "A", "2024-01-01"), item("b", "B", "2024-01-01")}

	tree := Build(items, Options{ExpandFirst: true})
	if !tree[0].Expanded || tree[1].Expanded {
		t.Fatalf("expected first node expanded only")
	}

	tree = Build(items, Options{ExpandFirst: true, ExpandPaths: []string{"B"}})
	if tree[0].Expanded || !tree[1].Expanded {
		t.Fatalf("expected explicit path to win over ExpandFirst")
	}
}

func TestBuildDefaultsCollapsed(t *testing.T) {
	tree := Build([]domain.BlogItem{item("a", "A/B", "2024-01-01")}, Options{ExpandBlogID: "missing"})
	Walk(tree, func(node *domain.BlogCategory, _ int) bool {
		if node.Expanded {
			t.Fatalf("expected %s collapsed", node.Path)
		}
		return true
	})
}

func TestBuildPartitionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 60).Draw(t, "n")
		items := make([]domain.BlogItem, n)
		for i := range items {
			items[i] = domain.BlogItem{
				ID:       fmt.Sprintf("post-%d", i),
				Category: rapid.SampledFrom([]string{"", "A", "A/B", "B", "/A/", "Ä", "中文/技术", "A//B/C"}).Draw(t, "category"),
				Path:     rapid.SampledFrom([]string{"x.md", "d/x.md", "d/e/x.md"}).Draw(t, "path"),
				Date:     rapid.SampledFrom([]string{"2024-01-01", "2023-06-30", "bogus", ""}).Draw(t, "date"),
			}
		}

		tree := Build(items, Options{})

		seen := map[string]int{}
		for _, blog := range Blogs(tree) {
			seen[blog.ID]++
		}
		if len(seen) != len(items) {
			t.Fatalf("expected %d distinct blogs, got %d", len(items), len(seen))
		}
		for id, count := range seen {
			if count != 1 {
				t.Fatalf("blog %s appears %d times", id, count)
			}
		}

		total := 0
		for _, node := range tree {
			total += Count(node)
		}
		if total != len(items) {
			t.Fatalf("expected Count total %d, got %d", len(items), total)
		}

		Walk(tree, func(node *domain.BlogCategory, _ int) bool {
			if !sort.SliceIsSorted(node.Blogs, func(i, j int) bool {
				return domain.Timestamp(node.Blogs[i].Date) > domain.Timestamp(node.Blogs[j].Date)
			}) {
				t.Fatalf("blogs of %s not sorted by date", node.Path)
			}
			return true
		})
	})
}
