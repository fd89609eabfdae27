package generator

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	layoutName = "layout"
	rootName   = "site"
)

// Page kinds rendered through the layout.
const (
	PageKindPost     = "post"
	PageKindNotFound = "not_found"
	PageKindError    = "error"
)

// TemplateContext is the data contract passed to the layout template.
type TemplateContext struct {
	Site  SiteMetadata
	Page  PageContext
	Build BuildMetadata
}

// SiteMetadata exposes site wide settings to templates.
type SiteMetadata struct {
	Name        string
	Description string
	BaseURL     string
	Locale      string
	Author      string
}

// BuildMetadata surfaces high level build information to templates.
type BuildMetadata struct {
	GeneratedAt time.Time
}

// PageContext is the per page payload.
type PageContext struct {
	Kind        string
	Slug        string
	Title       string
	Description string
	Canonical   string
	Item        domain.BlogItem
	Content     domain.BlogContent
	// HTML is the sanitized and highlighted post body.
	HTML template.HTML
	TOC  []domain.TOCItem
	// StructuredData is emitted as schema.org JSON-LD.
	StructuredData map[string]any
}

type layout struct {
	tpl *template.Template
}

// loadLayout parses the override at templatePath when set, otherwise the
// embedded default. Either must define a "layout" template.
func loadLayout(templatePath string) (*layout, error) {
	tpl := template.New(rootName)
	var err error
	if p := strings.TrimSpace(templatePath); p != "" {
		var raw []byte
		raw, err = os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("generator: read template %s: %w", p, err)
		}
		tpl, err = tpl.Parse(string(raw))
	} else {
		tpl, err = tpl.ParseFS(templateFS, "templates/*.html")
	}
	if err != nil {
		return nil, fmt.Errorf("generator: parse template: %w", err)
	}
	if tpl.Lookup(layoutName) == nil {
		return nil, fmt.Errorf("generator: template does not define %q", layoutName)
	}
	return &layout{tpl: tpl}, nil
}

func (l *layout) render(data TemplateContext) ([]byte, error) {
	var buf bytes.Buffer
	if err := l.tpl.ExecuteTemplate(&buf, layoutName, data); err != nil {
		return nil, fmt.Errorf("generator: render %s page: %w", data.Page.Kind, err)
	}
	return buf.Bytes(), nil
}

// The body is produced by the markdown renderer's sanitizer and the
// highlighter, both of which emit allow-listed markup only.
func newPostContext(site SiteMetadata, item domain.BlogItem, content domain.BlogContent, rendered domain.RenderedBlog) PageContext {
	canonical := absoluteURL(site.BaseURL, PostRoute(item.ID))
	description := strings.TrimSpace(content.Description)
	if description == "" {
		description = item.Title
	}
	modified := content.ModifiedTime
	if modified == "" {
		modified = item.Date
	}

	return PageContext{
		Kind:        PageKindPost,
		Slug:        item.ID,
		Title:       item.Title,
		Description: description,
		Canonical:   canonical,
		Item:        item,
		Content:     content,
		HTML:        template.HTML(rendered.HTML),
		TOC:         rendered.TOC,
		StructuredData: map[string]any{
			"@context":      "https://schema.org",
			"@type":         "BlogPosting",
			"headline":      item.Title,
			"description":   description,
			"datePublished": item.Date,
			"dateModified":  modified,
			"author": map[string]any{
				"@type": "Person",
				"name":  authorName(site),
			},
			"mainEntityOfPage": map[string]any{
				"@type": "WebPage",
				"@id":   canonical,
			},
		},
	}
}

func notFoundPage(site SiteMetadata) PageContext {
	return PageContext{
		Kind:        PageKindNotFound,
		Slug:        "404",
		Title:       "Page not found",
		Description: "The page you are looking for does not exist.",
		Canonical:   absoluteURL(site.BaseURL, "/404/"),
	}
}

func errorPage(site SiteMetadata) PageContext {
	return PageContext{
		Kind:        PageKindError,
		Slug:        "error",
		Title:       "Something went wrong",
		Description: "The page could not be displayed.",
		Canonical:   absoluteURL(site.BaseURL, "/error/"),
	}
}

func authorName(site SiteMetadata) string {
	if site.Author != "" {
		return site.Author
	}
	return site.Name
}
