// Package frontmatter splits a leading "---" delimited metadata block from a
// markdown document. The block grammar is a small line based subset of YAML:
// "key: value" scalars and "key:" followed by "- item" lists.
package frontmatter

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-blog/internal/domain"
)

const delimiter = "---"

// blockPattern decides whether a document carries a block and where its body
// starts. The block itself is decoded through lineFormat.
var blockPattern = regexp.MustCompile(`(?s)\A---\s*\n(.*?)\n---\s*\n(.*)\z`)

// lineFormat plugs the line grammar into frontmatter.Parse in place of YAML.
var lineFormat = frontmatter.NewFormat(delimiter, delimiter, unmarshalLines)

func unmarshalLines(data []byte, v any) error {
	fm, ok := v.(domain.FrontMatter)
	if !ok {
		return fmt.Errorf("frontmatter: cannot decode into %T", v)
	}
	parseBlock(string(data), fm)
	return nil
}

// Result is the outcome of parsing a document.
type Result struct {
	FrontMatter domain.FrontMatter
	Body        string
}

// Parser parses frontmatter blocks. The zero value uses time.Now for the
// default date.
type Parser struct {
	Now func() time.Time
}

// Parse parses raw using the wall clock for the default date.
func Parse(raw string) Result {
	return Parser{}.Parse(raw)
}

// Parse extracts the metadata block and body from raw. Input without a
// well-formed block yields default metadata and raw as the body; it never fails.
func (p Parser) Parse(raw string) Result {
	fm := p.defaults()

	match := blockPattern.FindStringSubmatchIndex(raw)
	if match == nil {
		return Result{FrontMatter: fm, Body: raw}
	}

	header, body := raw[:match[4]], raw[match[4]:]
	decoded := p.defaults()
	if _, err := frontmatter.Parse(strings.NewReader(header), decoded, lineFormat); err != nil {
		return Result{FrontMatter: fm, Body: raw}
	}
	return Result{FrontMatter: decoded, Body: body}
}

func (p Parser) defaults() domain.FrontMatter {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return domain.FrontMatter{
		"title": domain.Scalar(domain.DefaultTitle),
		"date":  domain.Scalar(domain.FormatDate(now())),
	}
}

func parseBlock(block string, fm domain.FrontMatter) {
	var (
		pendingKey string
		items      []string
	)

	flush := func() {
		if pendingKey != "" && len(items) > 0 {
			fm[pendingKey] = domain.List(items...)
		}
		pendingKey = ""
		items = nil
	}

	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "- ") {
			if pendingKey != "" {
				items = append(items, stripQuotes(strings.TrimSpace(trimmed[2:])))
			}
			continue
		}

		flush()

		idx := strings.Index(line, ":")
		if idx <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		if key == "" {
			continue
		}
		value := stripQuotes(strings.TrimSpace(line[idx+1:]))
		if value == "" {
			pendingKey = key
			continue
		}
		fm[key] = domain.Scalar(value)
	}

	flush()
}

// stripQuotes removes one quote character from each end independently.
func stripQuotes(value string) string {
	if value != "" && (value[0] == '"' || value[0] == '\'') {
		value = value[1:]
	}
	if n := len(value); n > 0 && (value[n-1] == '"' || value[n-1] == '\'') {
		value = value[:n-1]
	}
	return value
}

// Serialize renders fm as a delimited block, keys sorted, ending with a
// newline so a body can be appended directly.
func Serialize(fm domain.FrontMatter) string {
	var b strings.Builder
	b.WriteString(delimiter + "\n")
	for _, key := range fm.Keys() {
		value := fm[key]
		if value.IsList() {
			if len(value.List) == 0 {
				continue
			}
			b.WriteString(key + ":\n")
			for _, item := range value.List {
				b.WriteString("  - " + item + "\n")
			}
			continue
		}
		b.WriteString(key + ": " + value.Text + "\n")
	}
	b.WriteString(delimiter + "\n")
	return b.String()
}
