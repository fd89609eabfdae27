package generator

import (
	"fmt"
	"html"
	"strings"
	"time"
)

const maxFeedItems = 100

func feedLimit(configured int) int {
	if configured <= 0 || configured > maxFeedItems {
		return maxFeedItems
	}
	return configured
}

// buildAtomFeed renders posts, expected newest first, as an Atom document.
// Entry ids are the stable per-post UUIDs so readers do not see duplicates
// when a site moves.
func buildAtomFeed(site SiteMetadata, posts []post, generated time.Time) string {
	feedID := absoluteURL(site.BaseURL, "/feed.xml")

	updated := generated
	if len(posts) > 0 {
		if latest := posts[0].updated(); !latest.IsZero() {
			updated = latest
		}
	}

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	if site.Locale != "" {
		builder.WriteString(fmt.Sprintf(`<feed xmlns="http://www.w3.org/2005/Atom" xml:lang="%s">`+"\n", html.EscapeString(site.Locale)))
	} else {
		builder.WriteString(`<feed xmlns="http://www.w3.org/2005/Atom">` + "\n")
	}
	builder.WriteString(fmt.Sprintf("  <id>%s</id>\n", html.EscapeString(feedID)))
	builder.WriteString(fmt.Sprintf("  <title>%s</title>\n", html.EscapeString(site.Name)))
	if site.Description != "" {
		builder.WriteString(fmt.Sprintf("  <subtitle>%s</subtitle>\n", html.EscapeString(site.Description)))
	}
	builder.WriteString(fmt.Sprintf("  <updated>%s</updated>\n", updated.UTC().Format(time.RFC3339)))
	builder.WriteString(fmt.Sprintf(`  <link rel="alternate" href="%s" />`+"\n", html.EscapeString(absoluteURL(site.BaseURL, "/"))))
	builder.WriteString(fmt.Sprintf(`  <link rel="self" href="%s" />`+"\n", html.EscapeString(feedID)))
	if site.Author != "" {
		builder.WriteString(fmt.Sprintf("  <author><name>%s</name></author>\n", html.EscapeString(site.Author)))
	}
	for _, p := range posts {
		entryUpdated := p.updated()
		if entryUpdated.IsZero() {
			entryUpdated = generated
		}
		builder.WriteString("  <entry>\n")
		builder.WriteString(fmt.Sprintf("    <id>urn:uuid:%s</id>\n", p.Item.UID.String()))
		builder.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(p.Item.Title)))
		builder.WriteString(fmt.Sprintf(`    <link href="%s" />`+"\n", html.EscapeString(absoluteURL(site.BaseURL, PostRoute(p.Item.ID)))))
		builder.WriteString(fmt.Sprintf("    <updated>%s</updated>\n", entryUpdated.UTC().Format(time.RFC3339)))
		if published := p.published(); !published.IsZero() {
			builder.WriteString(fmt.Sprintf("    <published>%s</published>\n", published.UTC().Format(time.RFC3339)))
		}
		if p.Item.Category != "" {
			builder.WriteString(fmt.Sprintf(`    <category term="%s" />`+"\n", html.EscapeString(p.Item.Category)))
		}
		if summary := normalizeWhitespace(p.Content.Description); summary != "" {
			builder.WriteString(fmt.Sprintf("    <summary>%s</summary>\n", html.EscapeString(summary)))
		}
		builder.WriteString("  </entry>\n")
	}
	builder.WriteString(`</feed>` + "\n")
	return builder.String()
}

func normalizeWhitespace(input string) string {
	return strings.Join(strings.Fields(input), " ")
}
