package identity

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/goliatone/go-blog/internal/domain"
)

func TestSanitizeID(t *testing.T) {
	cases := map[string]string{
		"Post":               "post",
		"  My Post! 2024 ":   "my-post-2024",
		"--a__b--":           "a-b",
		"already-fine":       "already-fine",
		"中文":                 "",
		"Go/Concurrency 101": "go-concurrency-101",
	}
	for in, want := range cases {
		if got := SanitizeID(in); got != want {
			t.Fatalf("SanitizeID(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestFromPath(t *testing.T) {
	cases := []struct {
		path   string
		native bool
		want   string
	}{
		{"hello.md", false, "hello"},
		{"Tech/Go/Intro To Go.md", false, "tech-go-intro-to-go"},
		{"a//b.md", false, "a-b"},
		{"笔记/学习.md", false, ""},
		{"笔记/学习.md", true, "笔记-学习"},
		{"Tech/笔记 One.md", true, "tech-笔记-one"},
		{`win\path\file.md`, false, "win-path-file"},
	}
	for _, tc := range cases {
		if got := FromPath(tc.path, tc.native); got != tc.want {
			t.Fatalf("FromPath(%q, %v)=%q, want %q", tc.path, tc.native, got, tc.want)
		}
	}
}

func TestAssignExplicitCollision(t *testing.T) {
	docs := []Document{
		{Path: "a/b.md", FrontMatter: domain.FrontMatter{"id": domain.Scalar("post")}},
		{Path: "a/b2.md", FrontMatter: domain.FrontMatter{"id": domain.Scalar("post")}},
		{Path: "a/b3.md", FrontMatter: domain.FrontMatter{"id": domain.Scalar("Post")}},
	}
	ids, errs := AssignAll(docs, Options{})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors %v", errs)
	}
	if ids["a/b.md"] != "post" || ids["a/b2.md"] != "post-1" || ids["a/b3.md"] != "post-2" {
		t.Fatalf("unexpected ids %#v", ids)
	}
}

func TestAssignSuffixSkipsClaimedIDs(t *testing.T) {
	var collisions []string
	a := NewAssigner(Options{Collisions: func(base, assigned string) {
		collisions = append(collisions, base+"->"+assigned)
	}})
	first, _ := a.Assign("x.md", domain.FrontMatter{"id": domain.Scalar("post-1")})
	second, _ := a.Assign("y.md", domain.FrontMatter{"id": domain.Scalar("post")})
	third, _ := a.Assign("z.md", domain.FrontMatter{"id": domain.Scalar("post")})

	if first != "post-1" || second != "post" || third != "post-2" {
		t.Fatalf("unexpected ids %q %q %q", first, second, third)
	}
	if len(collisions) != 1 || collisions[0] != "post->post-2" {
		t.Fatalf("unexpected collision log %v", collisions)
	}
}

func TestAssignSyntheticFallback(t *testing.T) {
	a := NewAssigner(Options{})
	id, err := a.Assign("中文/文章.md", domain.FrontMatter{})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if !regexp.MustCompile(`^blog-[a-z0-9]+-[a-f0-9]{6}$`).MatchString(id) {
		t.Fatalf("unexpected synthetic id %q", id)
	}
}

func TestAssignFailsWhenSyntheticEmpty(t *testing.T) {
	a := NewAssigner(Options{Synthetic: func() string { return "" }})
	_, err := a.Assign("中文.md", domain.FrontMatter{})
	if !errors.Is(err, ErrIDUnavailable) {
		t.Fatalf("expected ErrIDUnavailable, got %v", err)
	}
}

func TestAssignUniquenessProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 40).Draw(t, "n")
		docs := make([]Document, 0, n)
		for i := 0; i < n; i++ {
			fm := domain.FrontMatter{}
			if rapid.Bool().Draw(t, "explicit") {
				fm["id"] = domain.Scalar(rapid.SampledFrom([]string{"post", "Post", "post-1", "a b", "x"}).Draw(t, "id"))
			}
			path := rapid.SampledFrom([]string{"a.md", "b/a.md", "b-a.md", "post.md", "x/y/z.md"}).Draw(t, "path")
			docs = append(docs, Document{Path: path, FrontMatter: fm})
		}

		a := NewAssigner(Options{})
		seen := map[string]struct{}{}
		for _, doc := range docs {
			id, err := a.Assign(doc.Path, doc.FrontMatter)
			if err != nil {
				t.Fatalf("Assign: %v", err)
			}
			if id == "" || strings.Trim(id, "-") != id {
				t.Fatalf("invalid id %q", id)
			}
			if !regexp.MustCompile(`^[a-z0-9-]+$`).MatchString(id) {
				t.Fatalf("id %q outside [a-z0-9-]", id)
			}
			if _, dup := seen[id]; dup {
				t.Fatalf("duplicate id %q", id)
			}
			seen[id] = struct{}{}
		}
	})
}

func TestPostUUIDDeterministic(t *testing.T) {
	if PostUUID("hello") != PostUUID(" hello ") {
		t.Fatalf("expected trimmed keys to share a UUID")
	}
	if PostUUID("hello") == PostUUID("world") {
		t.Fatalf("expected distinct UUIDs")
	}
}
