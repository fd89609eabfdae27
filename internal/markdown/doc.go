// Package markdown turns blog documents into sanitized HTML and outlines.
//
// The Renderer wraps goldmark with the extensions the blog relies on (tables,
// strikethrough, linkified URLs, typographic punctuation) and injects slug ids
// into headings. RenderSafe runs the output through a bluemonday allow-list;
// anything headed for a live page must go through it. ExtractTOC walks the
// parsed tree only and uses the same slug function so anchors resolve.
package markdown
