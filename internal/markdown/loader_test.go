package markdown

import (
	"context"
	"testing"
	"testing/fstest"
	"time"
)

func fixedNow() time.Time { return time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC) }

func TestLoaderLoadAllSortedAndFiltered(t *testing.T) {
	loader, err := NewDirLoader("testdata/posts", LoaderConfig{Now: fixedNow})
	if err != nil {
		t.Fatalf("NewDirLoader: %v", err)
	}
	docs, err := loader.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents (hidden dirs and non-md skipped), got %d", len(docs))
	}
	if docs[0].Path != "hello.md" || docs[1].Path != "tech/go/concurrency.md" {
		t.Fatalf("unexpected order %q, %q", docs[0].Path, docs[1].Path)
	}
	hello := docs[0]
	if hello.FrontMatter.Title() != "Hello" {
		t.Fatalf("unexpected title %q", hello.FrontMatter.Title())
	}
	if tags, _ := hello.FrontMatter.Strings("tags"); len(tags) != 2 || tags[1] != "meta" {
		t.Fatalf("unexpected tags %#v", tags)
	}
	if len(hello.Checksum) != 32 {
		t.Fatalf("expected sha256 checksum")
	}
	if hello.LastModified.IsZero() {
		t.Fatalf("expected modification time")
	}
}

func TestLoaderWithRootAndFlat(t *testing.T) {
	fsys := fstest.MapFS{
		"content/a.md":       {Data: []byte("no frontmatter")},
		"content/sub/b.md":   {Data: []byte("---\ntitle: B\n---\nbody")},
		"content/readme.txt": {Data: []byte("skip")},
		"other/c.md":         {Data: []byte("outside root")},
	}

	docs, err := NewLoader(fsys, LoaderConfig{Root: "content", Now: fixedNow}).LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(docs) != 2 || docs[0].Path != "a.md" || docs[1].Path != "sub/b.md" {
		t.Fatalf("unexpected docs %#v", docs)
	}
	if docs[0].FrontMatter.Get("date") != "2025-02-03" || docs[0].Body != "no frontmatter" {
		t.Fatalf("expected defaults for document without block, got %#v", docs[0])
	}

	flat, err := NewLoader(fsys, LoaderConfig{Root: "content", Flat: true}).LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll flat: %v", err)
	}
	if len(flat) != 1 {
		t.Fatalf("expected only top-level documents, got %d", len(flat))
	}
}

func TestLoaderHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fsys := fstest.MapFS{"a.md": {Data: []byte("x")}}
	if _, err := NewLoader(fsys, LoaderConfig{}).LoadAll(ctx); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestNewDirLoaderRejectsMissingDir(t *testing.T) {
	if _, err := NewDirLoader("testdata/missing", LoaderConfig{}); err == nil {
		t.Fatalf("expected error")
	}
}
