package markdown

import (
	"regexp"
	"strings"
)

var (
	slugDisallowed = regexp.MustCompile(`[^\p{L}\p{N}\s-]`)
	slugSpaces     = regexp.MustCompile(`\s+`)
	slugHyphens    = regexp.MustCompile(`-+`)
)

// Slug converts heading text into an anchor id. Duplicate headings yield
// duplicate ids; callers that need unique anchors must dedupe themselves.
func Slug(text string) string {
	slug := strings.ToLower(text)
	slug = slugDisallowed.ReplaceAllString(slug, "")
	slug = slugSpaces.ReplaceAllString(slug, "-")
	slug = slugHyphens.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
