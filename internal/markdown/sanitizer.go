package markdown

import (
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

// AllowedTags lists every element that survives sanitization.
var AllowedTags = []string{
	"p", "br", "strong", "em", "code", "pre", "blockquote",
	"ul", "ol", "li", "a", "img",
	"h1", "h2", "h3", "h4", "h5", "h6",
	"table", "thead", "tbody", "tr", "th", "td",
	"del", "s", "hr", "div", "span",
}

// AllowedAttrs lists every attribute that survives sanitization. href and src
// are further restricted to http, https, mailto and relative URLs.
var AllowedAttrs = []string{
	"href", "src", "alt", "class", "title", "target", "rel", "id", "data-highlighted",
}

// Sanitizer applies a strict allow-list. Anything not listed is removed,
// including harmless markup; script and style contents are dropped entirely.
type Sanitizer struct {
	policy *bluemonday.Policy
}

var _ interfaces.HTMLSanitizer = (*Sanitizer)(nil)

// NewSanitizer builds the allow-list policy. The policy is immutable after
// construction and safe for concurrent use.
func NewSanitizer() *Sanitizer {
	policy := bluemonday.NewPolicy()
	policy.AllowElements(AllowedTags...)
	policy.AllowAttrs("alt", "class", "title", "target", "rel", "id", "data-highlighted").Globally()
	policy.AllowAttrs("href").OnElements("a")
	policy.AllowAttrs("src").OnElements("img")
	policy.RequireParseableURLs(true)
	policy.AllowRelativeURLs(true)
	policy.AllowURLSchemes("http", "https", "mailto")
	return &Sanitizer{policy: policy}
}

// Sanitize returns html reduced to the allow-list.
func (s *Sanitizer) Sanitize(html []byte) []byte {
	return s.policy.SanitizeBytes(html)
}

// SanitizeString is Sanitize for strings.
func (s *Sanitizer) SanitizeString(html string) string {
	return s.policy.Sanitize(html)
}
