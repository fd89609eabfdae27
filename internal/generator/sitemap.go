package generator

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/domain"
)

type sitemapEntry struct {
	Location   string
	LastMod    string
	ChangeFreq string
	Priority   string
}

// buildSitemap lists the home page and every post. Post lastmod is the
// modified time when present, else the publication date; invalid dates are
// left out.
func buildSitemap(baseURL string, posts []post, generated time.Time) string {
	entries := make([]sitemapEntry, 0, len(posts)+1)
	entries = append(entries, sitemapEntry{
		Location:   absoluteURL(baseURL, "/"),
		LastMod:    domain.FormatDate(generated),
		ChangeFreq: "daily",
		Priority:   "1.0",
	})

	seen := map[string]struct{}{}
	for _, p := range posts {
		location := absoluteURL(baseURL, PostRoute(p.Item.ID))
		if _, ok := seen[location]; ok {
			continue
		}
		seen[location] = struct{}{}
		entries = append(entries, sitemapEntry{
			Location:   location,
			LastMod:    p.lastModified(),
			ChangeFreq: "weekly",
			Priority:   "0.6",
		})
	}

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, entry := range entries {
		builder.WriteString("  <url>\n")
		builder.WriteString(fmt.Sprintf("    <loc>%s</loc>\n", html.EscapeString(entry.Location)))
		if entry.LastMod != "" {
			builder.WriteString(fmt.Sprintf("    <lastmod>%s</lastmod>\n", entry.LastMod))
		}
		builder.WriteString(fmt.Sprintf("    <changefreq>%s</changefreq>\n", entry.ChangeFreq))
		builder.WriteString(fmt.Sprintf("    <priority>%s</priority>\n", entry.Priority))
		builder.WriteString("  </url>\n")
	}
	builder.WriteString(`</urlset>` + "\n")
	return builder.String()
}

// post pairs the list and detail projections of one blog.
type post struct {
	Item    domain.BlogItem
	Content domain.BlogContent
}

func (p post) lastModified() string {
	for _, candidate := range []string{p.Content.ModifiedTime, p.Item.Date} {
		if parsed, ok := domain.ParseDate(candidate); ok {
			return domain.FormatDate(parsed)
		}
	}
	return ""
}

func (p post) published() time.Time {
	parsed, _ := domain.ParseDate(p.Item.Date)
	return parsed
}

func (p post) updated() time.Time {
	if parsed, ok := domain.ParseDate(p.Content.ModifiedTime); ok {
		return parsed
	}
	return p.published()
}

func buildRobots(baseURL string, includeSitemap bool) string {
	var builder strings.Builder
	builder.WriteString("User-agent: *\n")
	builder.WriteString("Allow: /\n")
	if includeSitemap {
		builder.WriteString("\n")
		builder.WriteString(fmt.Sprintf("Sitemap: %s\n", absoluteURL(baseURL, "/sitemap.xml")))
	}
	return builder.String()
}
