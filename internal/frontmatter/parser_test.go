package frontmatter

import (
	"reflect"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/goliatone/go-blog/internal/domain"
)

var fixedClock = func() time.Time {
	return time.Date(2025, 3, 14, 22, 0, 0, 0, time.UTC)
}

func TestParseScalarBlock(t *testing.T) {
	res := Parser{Now: fixedClock}.Parse("---\ntitle: Hello\ndate: 2024-01-01\n---\nBody")

	if res.Body != "Body" {
		t.Fatalf("unexpected body %q", res.Body)
	}
	want := domain.FrontMatter{
		"title": domain.Scalar("Hello"),
		"date":  domain.Scalar("2024-01-01"),
	}
	if !reflect.DeepEqual(res.FrontMatter, want) {
		t.Fatalf("unexpected frontmatter %#v", res.FrontMatter)
	}
}

func TestParseWithoutBlockReturnsDefaults(t *testing.T) {
	raw := "# Just markdown\n\nno metadata here"
	res := Parser{Now: fixedClock}.Parse(raw)

	if res.Body != raw {
		t.Fatalf("expected body to equal input, got %q", res.Body)
	}
	if res.FrontMatter.Get("title") != "Untitled" {
		t.Fatalf("expected default title, got %q", res.FrontMatter.Get("title"))
	}
	if res.FrontMatter.Get("date") != "2025-03-14" {
		t.Fatalf("expected default date, got %q", res.FrontMatter.Get("date"))
	}
}

func TestParseUnterminatedBlockIsBody(t *testing.T) {
	raw := "---\ntitle: Broken\nno closing delimiter"
	res := Parser{Now: fixedClock}.Parse(raw)
	if res.Body != raw {
		t.Fatalf("expected raw body, got %q", res.Body)
	}
	if res.FrontMatter.Get("title") != "Untitled" {
		t.Fatalf("expected default title")
	}
}

func TestParsePartialBlockKeepsDefaults(t *testing.T) {
	res := Parser{Now: fixedClock}.Parse("---\ncategory: Tech/Go\n---\ncontent")
	if res.FrontMatter.Get("title") != "Untitled" || res.FrontMatter.Get("date") != "2025-03-14" {
		t.Fatalf("expected defaults to survive, got %#v", res.FrontMatter)
	}
	if res.FrontMatter.Get("category") != "Tech/Go" {
		t.Fatalf("expected category, got %#v", res.FrontMatter)
	}
}

func TestParseListField(t *testing.T) {
	res := Parse("---\ntitle: Lists\ntags:\n  - a\n  - \"b\"\n  - 'c'\ndescription: after\n---\nbody")

	tags, ok := res.FrontMatter.Strings("tags")
	if !ok {
		t.Fatalf("expected tags list, got %#v", res.FrontMatter["tags"])
	}
	if !reflect.DeepEqual(tags, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected tags %#v", tags)
	}
	if res.FrontMatter.Get("description") != "after" {
		t.Fatalf("expected description after list, got %#v", res.FrontMatter["description"])
	}
}

func TestParseEmptyListKeyStaysAbsent(t *testing.T) {
	res := Parse("---\ntags:\ntitle: x\n---\n")
	if _, ok := res.FrontMatter["tags"]; ok {
		t.Fatalf("expected tags to be absent, got %#v", res.FrontMatter["tags"])
	}
}

func TestParseEmptyTitleKeepsDefault(t *testing.T) {
	res := Parse("---\ntitle:\n---\nbody")
	if res.FrontMatter.Get("title") != "Untitled" {
		t.Fatalf("expected default title, got %q", res.FrontMatter.Get("title"))
	}
}

func TestParseListEndsAtNonListLine(t *testing.T) {
	res := Parse("---\ntags:\n  - a\njunk line\n  - b\n---\n")
	tags, _ := res.FrontMatter.Strings("tags")
	if !reflect.DeepEqual(tags, []string{"a"}) {
		t.Fatalf("expected list to stop at non-list line, got %#v", tags)
	}
}

func TestParseIgnoresMalformedLines(t *testing.T) {
	res := Parse("---\n: no key\njust words\n- orphan\ntitle: ok\n---\nbody")
	if res.FrontMatter.Get("title") != "ok" {
		t.Fatalf("expected title ok, got %#v", res.FrontMatter)
	}
	if len(res.FrontMatter) != 2 {
		t.Fatalf("expected only title and date, got %#v", res.FrontMatter)
	}
}

func TestParseValueWithColon(t *testing.T) {
	res := Parse("---\ntitle: \"Go: a tour\"\n---\n")
	if got := res.FrontMatter.Get("title"); got != "Go: a tour" {
		t.Fatalf("unexpected title %q", got)
	}
}

func TestParseCRLF(t *testing.T) {
	res := Parse("---\r\ntitle: Windows\r\n---\r\nbody")
	if got := res.FrontMatter.Get("title"); got != "Windows" {
		t.Fatalf("unexpected title %q", got)
	}
}

func TestSerializeRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		keys := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-z][a-z0-9_]{0,8}`), 0, 6, rapid.ID[string]).Draw(t, "keys")
		fm := domain.FrontMatter{}
		for _, key := range keys {
			fm[key] = domain.Scalar(rapid.StringMatching(`[A-Za-z0-9][A-Za-z0-9 .,:/-]{0,16}[A-Za-z0-9]`).Draw(t, "value"))
		}
		body := rapid.StringMatching(`[A-Za-z# ]{0,20}`).Draw(t, "body")

		parser := Parser{Now: fixedClock}
		first := parser.Parse(Serialize(fm) + body)
		for key, value := range fm {
			if first.FrontMatter[key].Text != value.Text {
				t.Fatalf("key %q: got %q want %q", key, first.FrontMatter[key].Text, value.Text)
			}
		}

		second := parser.Parse(Serialize(first.FrontMatter) + first.Body)
		if !reflect.DeepEqual(first.FrontMatter, second.FrontMatter) {
			t.Fatalf("round trip mismatch: %#v vs %#v", first.FrontMatter, second.FrontMatter)
		}
	})
}

func TestSerializeLists(t *testing.T) {
	fm := domain.FrontMatter{
		"title": domain.Scalar("T"),
		"tags":  domain.List("x", "y"),
	}
	res := Parse(Serialize(fm) + "body")
	tags, ok := res.FrontMatter.Strings("tags")
	if !ok || !reflect.DeepEqual(tags, []string{"x", "y"}) {
		t.Fatalf("unexpected tags %#v", tags)
	}
	if res.Body != "body" {
		t.Fatalf("unexpected body %q", res.Body)
	}
}

func TestParseEmptyBlockIsBody(t *testing.T) {
	raw := "---\n---\nbody"
	res := Parser{Now: fixedClock}.Parse(raw)
	if res.Body != raw {
		t.Fatalf("expected raw body, got %q", res.Body)
	}
	if res.FrontMatter.Get("title") != domain.DefaultTitle {
		t.Fatalf("expected default title, got %#v", res.FrontMatter)
	}
}

func TestParseDropsBlankLinesAfterBlock(t *testing.T) {
	res := Parser{Now: fixedClock}.Parse("---\n\ntitle: Spaced\n\n---\n\n\n# Heading\n")
	if res.Body != "# Heading\n" {
		t.Fatalf("unexpected body %q", res.Body)
	}
	if got := res.FrontMatter.Get("title"); got != "Spaced" {
		t.Fatalf("unexpected title %q", got)
	}
}

func TestLineFormatRejectsForeignTargets(t *testing.T) {
	var target map[string]string
	if err := lineFormat.Unmarshal([]byte("title: x"), &target); err == nil {
		t.Fatal("expected error decoding into a foreign type")
	}
}
