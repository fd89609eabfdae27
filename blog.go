// Package blog is the composition root of the markdown blog pipeline. A
// Module loads a directory of markdown posts, serves list, detail and
// category projections, renders sanitized HTML with highlighted code and
// builds the static site.
package blog

import (
	"context"
	"sync"

	sitecmd "github.com/goliatone/go-blog/internal/commands/site"
	"github.com/goliatone/go-blog/internal/di"
	"github.com/goliatone/go-blog/internal/domain"
	"github.com/goliatone/go-blog/internal/generator"
	"github.com/goliatone/go-blog/internal/highlight"
	"github.com/goliatone/go-blog/internal/store"
)

// BlogItem is the list projection of a post.
type BlogItem = domain.BlogItem

// BlogContent is the detail projection of a post.
type BlogContent = domain.BlogContent

// BlogCategory is one node of the category tree.
type BlogCategory = domain.BlogCategory

// SearchItem is a list item enriched with its description.
type SearchItem = domain.SearchItem

// TOCItem is one heading in a post's table of contents.
type TOCItem = domain.TOCItem

// RenderedBlog carries sanitized, highlighted HTML and the TOC of a post.
type RenderedBlog = domain.RenderedBlog

// GeneratorService exports the static site generator contract.
type GeneratorService = generator.Service

// BuildOptions exports the per-build overrides.
type BuildOptions = generator.BuildOptions

// BuildResult exports the build report.
type BuildResult = generator.BuildResult

// SiteCommands exports the go-command handlers for reload, build and toggle.
type SiteCommands = sitecmd.HandlerSet

// Upgrade is the handle of a background highlight pass started by Preview.
type Upgrade = highlight.Upgrade

// Option customises the module wiring.
type Option = di.Option

var (
	ErrBlogNotFound    = store.ErrBlogNotFound
	ErrNotLoaded       = store.ErrNotLoaded
	ErrServiceDisabled = generator.ErrServiceDisabled
)

var (
	WithLoggerProvider  = di.WithLoggerProvider
	WithMetrics         = di.WithMetrics
	WithContentFS       = di.WithContentFS
	WithNow             = di.WithNow
	WithWriter          = di.WithWriter
	WithSanitizer       = di.WithSanitizer
	WithCommandRegistry = di.WithCommandRegistry
	WithCronRegistrar   = di.WithCronRegistrar
)

// Module is the top-level entry point for blog consumers.
type Module struct {
	container *di.Container

	sessionOnce sync.Once
	session     *highlight.Session
}

// New constructs a Module. Content is not read until Load.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Load reads the content directory and swaps in a fresh snapshot.
func (m *Module) Load(ctx context.Context) error {
	return m.container.Store().Load(ctx)
}

// List returns every post in load order.
func (m *Module) List() []BlogItem {
	return m.container.Store().List()
}

// Recent returns up to limit posts, newest first.
func (m *Module) Recent(limit int) []BlogItem {
	return m.container.Store().Recent(limit)
}

// Item returns the list projection of one post.
func (m *Module) Item(id string) (BlogItem, error) {
	return m.container.Store().Item(id)
}

// Content returns the detail projection of one post.
func (m *Module) Content(id string) (BlogContent, error) {
	return m.container.Store().Content(id)
}

// Search matches query against titles, descriptions and tags.
func (m *Module) Search(query string) []SearchItem {
	return m.container.Store().Search(query)
}

// Categories returns the current category tree.
func (m *Module) Categories() []*BlogCategory {
	return m.container.Store().Categories()
}

// ToggleCategory flips the expanded state of the node at path.
func (m *Module) ToggleCategory(path string) []*BlogCategory {
	return m.container.Store().ToggleCategory(path)
}

// Rendered returns the sanitized, highlighted HTML and TOC of a post.
func (m *Module) Rendered(ctx context.Context, id string) (RenderedBlog, error) {
	return m.container.Store().Rendered(ctx, id)
}

// Generator returns the static site generator.
func (m *Module) Generator() GeneratorService {
	return m.container.GeneratorService()
}

// Build renders the static site.
func (m *Module) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	return m.container.GeneratorService().Build(ctx, opts)
}

// Commands returns the site command handlers.
func (m *Module) Commands() *SiteCommands {
	return m.container.SiteCommands()
}

// Preview hands the sanitized HTML of id to apply straight away, then
// upgrades its code blocks in the background. The upgraded markup reaches
// apply only while id is still the previewed post; previewing another post
// drops it. The returned Upgrade is nil when highlighting is disabled.
func (m *Module) Preview(ctx context.Context, id string, apply func(html string)) (*Upgrade, error) {
	content, err := m.container.Store().Content(id)
	if err != nil {
		return nil, err
	}
	html, err := m.container.Renderer().RenderSafe(content.Content)
	if err != nil {
		return nil, err
	}
	session := m.previewSession()
	if session == nil {
		apply(html)
		return nil, nil
	}
	return session.Show(ctx, id, html, apply), nil
}

// ClosePreview drops any pending upgrade and waits for in-flight passes.
func (m *Module) ClosePreview() {
	if session := m.previewSession(); session != nil {
		session.Close()
	}
}

func (m *Module) previewSession() *highlight.Session {
	m.sessionOnce.Do(func() {
		if h := m.container.Highlighter(); h != nil {
			m.session = highlight.NewSession(h)
		}
	})
	return m.session
}
