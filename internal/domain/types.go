package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultTitle is used when a document carries no title.
	DefaultTitle = "Untitled"
	// DateLayout is the preferred frontmatter date format.
	DateLayout = "2006-01-02"
)

// Document represents one markdown source file after frontmatter parsing.
// Documents are read once per load and never mutated afterwards.
type Document struct {
	// Path is slash separated and relative to the content root.
	Path        string
	FrontMatter FrontMatter
	Body        string
	// LastModified is the file modification time reported by the filesystem.
	LastModified time.Time
	// Checksum stores the SHA-256 digest of the raw file.
	Checksum []byte
}

// BlogItem is the list view projection of a Document.
type BlogItem struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Date     string    `json:"date"`
	Category string    `json:"category,omitempty"`
	Tags     []string  `json:"tags,omitempty"`
	Path     string    `json:"-"`
	UID      uuid.UUID `json:"-"`
}

// BlogContent is the detail view projection of a Document, keyed by BlogItem.ID.
type BlogContent struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	Description  string `json:"description,omitempty"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
}

// SearchItem feeds the client side search index.
type SearchItem struct {
	BlogItem
	Description string `json:"description,omitempty"`
}

// BlogCategory is a node of the category tree. Nodes are treated as
// immutable once built; see categories.Toggle for updates.
type BlogCategory struct {
	Name     string          `json:"name"`
	Path     string          `json:"path"`
	Blogs    []BlogItem      `json:"blogs"`
	Children []*BlogCategory `json:"children,omitempty"`
	Expanded bool            `json:"expanded"`
}

// TOCItem is one entry of a document outline.
type TOCItem struct {
	ID       string    `json:"id"`
	Text     string    `json:"text"`
	Level    int       `json:"level"`
	Children []TOCItem `json:"children,omitempty"`
}

// RenderedBlog bundles the sanitized, highlighted HTML and outline of a post.
type RenderedBlog struct {
	ID   string    `json:"id"`
	HTML string    `json:"html"`
	TOC  []TOCItem `json:"toc"`
}
