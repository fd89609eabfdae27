package generator

import (
	"net/url"
	"path"
	"strings"
)

const postPrefix = "blog"

// PostRoute is the public route of a blog post.
func PostRoute(id string) string {
	return "/" + postPrefix + "/" + url.PathEscape(id) + "/"
}

func postOutputPath(id string) string {
	return path.Join(postPrefix, id, "index.html")
}

func baseURLWithFallback(base string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	if trimmed == "" {
		return "http://localhost"
	}
	return trimmed
}

func absoluteURL(base, route string) string {
	targetBase := baseURLWithFallback(base)
	normalized := strings.TrimSpace(route)
	if normalized == "" {
		return targetBase + "/"
	}
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	return targetBase + normalized
}
