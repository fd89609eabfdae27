// Package store owns the in-memory snapshot of the blog corpus: list and
// detail projections, the category tree and memoised rendered posts.
//
// A Store is constructed explicitly and filled by Load. Each Load builds a
// complete new snapshot and swaps it in under a lock, so readers only ever
// see a fully built state. Values handed to callers are copies; the category
// tree is shared but never mutated (see categories.Toggle).
package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/viccon/sturdyc"

	"github.com/goliatone/go-blog/internal/categories"
	"github.com/goliatone/go-blog/internal/domain"
	"github.com/goliatone/go-blog/internal/identity"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/metrics"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// ErrBlogNotFound reports a lookup of an id that is not in the snapshot.
var ErrBlogNotFound = errors.New("store: blog not found")

// ErrNotLoaded reports a read before the first successful Load.
var ErrNotLoaded = errors.New("store: content not loaded")

const (
	textCodeNotFound  = "BLOG_NOT_FOUND"
	textCodeNotLoaded = "BLOG_CONTENT_NOT_LOADED"
)

// DocumentSource yields the corpus, sorted by path.
type DocumentSource interface {
	LoadAll(ctx context.Context) ([]domain.Document, error)
}

// Renderer is the slice of markdown.Renderer the store needs.
type Renderer interface {
	RenderSafe(markdown string) (string, error)
	ExtractTOC(markdown string) []domain.TOCItem
}

// CacheConfig sizes the rendered post cache.
type CacheConfig struct {
	Enabled            bool
	Capacity           int
	Shards             int
	TTL                time.Duration
	EvictionPercentage int
}

// Config controls snapshot construction.
type Config struct {
	PreserveNativeIDs bool
	Categories        categories.Options
	Cache             CacheConfig
}

// Dependencies are the collaborators of a Store. Source and Renderer are
// required; the rest default to no-ops.
type Dependencies struct {
	Source      DocumentSource
	Renderer    Renderer
	Highlighter interfaces.CodeHighlighter
	Metrics     *metrics.Metrics
	Logger      interfaces.Logger
	Now         func() time.Time
}

// Store is safe for concurrent use.
type Store struct {
	cfg    Config
	deps   Dependencies
	logger interfaces.Logger

	mu   sync.RWMutex
	snap *snapshot
}

type snapshot struct {
	items    []domain.BlogItem
	index    map[string]int
	contents map[string]domain.BlogContent
	tree     []*domain.BlogCategory
	rendered *sturdyc.Client[domain.RenderedBlog]
	loadedAt time.Time
}

// New constructs an empty Store.
func New(cfg Config, deps Dependencies) (*Store, error) {
	if deps.Source == nil {
		return nil, errors.New("store: document source is required")
	}
	if deps.Renderer == nil {
		return nil, errors.New("store: renderer is required")
	}
	if deps.Logger == nil {
		deps.Logger = logging.NoOp()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if cfg.Categories.Logger == nil {
		cfg.Categories.Logger = deps.Logger
	}
	return &Store{cfg: cfg, deps: deps, logger: deps.Logger}, nil
}

// Load reads the corpus and swaps in a new snapshot. On failure the previous
// snapshot stays in place.
func (s *Store) Load(ctx context.Context) error {
	started := s.deps.Now()
	docs, err := s.deps.Source.LoadAll(ctx)
	if err != nil {
		s.deps.Metrics.LoadFailed()
		s.logger.Error("store.load_failed", "error", err)
		return err
	}

	snap := s.build(docs)
	snap.loadedAt = s.deps.Now()

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	s.deps.Metrics.Loaded(len(snap.items))
	s.logger.Info("store.loaded",
		"documents", len(docs),
		"blogs", len(snap.items),
		"categories", len(snap.tree),
		"duration", snap.loadedAt.Sub(started),
	)
	return nil
}

func (s *Store) build(docs []domain.Document) *snapshot {
	assigner := identity.NewAssigner(identity.Options{
		PreserveNativeScript: s.cfg.PreserveNativeIDs,
		Logger:               s.logger,
		Now:                  s.deps.Now,
		Collisions: func(base, assigned string) {
			s.deps.Metrics.Collision()
			s.logger.Info("store.id_collision", "base", base, "id", assigned)
		},
	})

	snap := &snapshot{
		items:    make([]domain.BlogItem, 0, len(docs)),
		index:    make(map[string]int, len(docs)),
		contents: make(map[string]domain.BlogContent, len(docs)),
	}

	for _, doc := range docs {
		logger := logging.WithDocumentContext(s.logger, doc.Path, "", "load")
		if assigner.BaseID(doc.Path, doc.FrontMatter) == "" {
			s.deps.Metrics.Synthetic()
		}
		id, err := assigner.Assign(doc.Path, doc.FrontMatter)
		if err != nil {
			logger.Error("store.id_unavailable", "error", err)
			continue
		}

		item, content := project(doc, id)
		if !domain.ValidDate(item.Date) {
			logger.Warn("store.invalid_date", "blog_id", id, "date", item.Date)
		}

		snap.index[id] = len(snap.items)
		snap.items = append(snap.items, item)
		snap.contents[id] = content
	}

	snap.tree = categories.Build(snap.items, s.cfg.Categories)
	snap.rendered = s.newCache()
	return snap
}

func project(doc domain.Document, id string) (domain.BlogItem, domain.BlogContent) {
	fm := doc.FrontMatter
	title := fm.Title()
	date := fm.Get("date")

	category := strings.Join(categories.Split(fm.Get("category")), "/")
	if category == "" {
		if dir := parentDir(doc.Path); dir != "" {
			category = dir
		}
	}

	var tags []string
	if list, ok := fm.Strings("tags"); ok {
		tags = list
	} else if single, ok := fm.String("tags"); ok && strings.TrimSpace(single) != "" {
		tags = splitTags(single)
	}

	modified := fm.Get("modifiedTime")
	if modified == "" {
		modified = date
	}

	item := domain.BlogItem{
		ID:       id,
		Title:    title,
		Date:     date,
		Category: category,
		Tags:     tags,
		Path:     doc.Path,
		UID:      identity.PostUUID(id),
	}
	content := domain.BlogContent{
		Title:        title,
		Content:      doc.Body,
		Description:  fm.Get("description"),
		ModifiedTime: modified,
	}
	return item, content
}

func parentDir(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	idx := strings.LastIndex(p, "/")
	if idx <= 0 {
		return ""
	}
	return strings.Join(categories.Split(p[:idx]), "/")
}

// splitTags accepts the inline "[a, b]" and "a, b" spellings.
func splitTags(value string) []string {
	value = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(value), "["), "]")
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.Trim(strings.TrimSpace(part), `"'`)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (s *Store) current() (*snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, goerrors.Wrap(ErrNotLoaded, goerrors.CategoryNotFound, "blog content has not been loaded").
			WithTextCode(textCodeNotLoaded)
	}
	return s.snap, nil
}

// Loaded reports whether a snapshot is available.
func (s *Store) Loaded() bool {
	_, err := s.current()
	return err == nil
}

// LoadedAt returns when the current snapshot was built.
func (s *Store) LoadedAt() time.Time {
	snap, err := s.current()
	if err != nil {
		return time.Time{}
	}
	return snap.loadedAt
}

// List returns every blog item in load (path) order.
func (s *Store) List() []domain.BlogItem {
	snap, err := s.current()
	if err != nil {
		return nil
	}
	return cloneItems(snap.items)
}

// Recent returns up to limit items, newest first. limit <= 0 returns all.
func (s *Store) Recent(limit int) []domain.BlogItem {
	items := s.List()
	sort.SliceStable(items, func(i, j int) bool {
		return domain.Timestamp(items[i].Date) > domain.Timestamp(items[j].Date)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// Item returns the list projection for id.
func (s *Store) Item(id string) (domain.BlogItem, error) {
	snap, err := s.current()
	if err != nil {
		return domain.BlogItem{}, err
	}
	idx, ok := snap.index[id]
	if !ok {
		return domain.BlogItem{}, notFound(id)
	}
	return cloneItem(snap.items[idx]), nil
}

// Content returns the detail projection for id. Unknown ids fail with an
// error in the not-found category wrapping ErrBlogNotFound.
func (s *Store) Content(id string) (domain.BlogContent, error) {
	snap, err := s.current()
	if err != nil {
		return domain.BlogContent{}, err
	}
	content, ok := snap.contents[id]
	if !ok {
		return domain.BlogContent{}, notFound(id)
	}
	return content, nil
}

// PathFor returns the source path of id.
func (s *Store) PathFor(id string) (string, error) {
	item, err := s.Item(id)
	if err != nil {
		return "", err
	}
	return item.Path, nil
}

// SearchItems returns every item together with its description.
func (s *Store) SearchItems() []domain.SearchItem {
	snap, err := s.current()
	if err != nil {
		return nil
	}
	out := make([]domain.SearchItem, len(snap.items))
	for i, item := range snap.items {
		out[i] = domain.SearchItem{
			BlogItem:    cloneItem(item),
			Description: snap.contents[item.ID].Description,
		}
	}
	return out
}

// Search filters SearchItems by a case-insensitive substring of the title,
// description or any tag. An empty query matches nothing.
func (s *Store) Search(query string) []domain.SearchItem {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	var out []domain.SearchItem
	for _, item := range s.SearchItems() {
		if matches(item, query) {
			out = append(out, item)
		}
	}
	return out
}

func matches(item domain.SearchItem, query string) bool {
	if strings.Contains(strings.ToLower(item.Title), query) ||
		strings.Contains(strings.ToLower(item.Description), query) {
		return true
	}
	for _, tag := range item.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// Categories returns the current category tree. The nodes must be treated
// as read-only.
func (s *Store) Categories() []*domain.BlogCategory {
	snap, err := s.current()
	if err != nil {
		return nil
	}
	return snap.tree
}

// ToggleCategory flips the expanded flag of the node at path and publishes
// the resulting tree. Readers holding the previous tree are unaffected.
func (s *Store) ToggleCategory(path string) []*domain.BlogCategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return nil
	}
	next := *s.snap
	next.tree = categories.Toggle(s.snap.tree, path)
	s.snap = &next
	return next.tree
}

func notFound(id string) error {
	return goerrors.Wrap(ErrBlogNotFound, goerrors.CategoryNotFound, "blog "+id+" does not exist").
		WithTextCode(textCodeNotFound)
}

func cloneItems(items []domain.BlogItem) []domain.BlogItem {
	out := make([]domain.BlogItem, len(items))
	for i, item := range items {
		out[i] = cloneItem(item)
	}
	return out
}

func cloneItem(item domain.BlogItem) domain.BlogItem {
	if item.Tags != nil {
		item.Tags = append([]string(nil), item.Tags...)
	}
	return item
}

func (s *Store) newCache() *sturdyc.Client[domain.RenderedBlog] {
	c := s.cfg.Cache
	if !c.Enabled {
		return nil
	}
	// Clients live and die with their snapshot, so no background evictions.
	return sturdyc.New[domain.RenderedBlog](c.Capacity, c.Shards, c.TTL, c.EvictionPercentage,
		sturdyc.WithNoContinuousEvictions(),
	)
}

// Rendered returns the sanitized, highlighted HTML and outline of id.
// Results are memoised per snapshot when the cache is enabled.
func (s *Store) Rendered(ctx context.Context, id string) (domain.RenderedBlog, error) {
	snap, err := s.current()
	if err != nil {
		return domain.RenderedBlog{}, err
	}
	content, ok := snap.contents[id]
	if !ok {
		return domain.RenderedBlog{}, notFound(id)
	}

	fetch := func(ctx context.Context) (domain.RenderedBlog, error) {
		return s.render(ctx, id, content.Content)
	}
	if snap.rendered == nil {
		return fetch(ctx)
	}
	return snap.rendered.GetOrFetch(ctx, id, fetch)
}

func (s *Store) render(ctx context.Context, id, body string) (domain.RenderedBlog, error) {
	started := time.Now()
	logger := logging.WithDocumentContext(s.logger, "", id, "render")

	html, err := s.deps.Renderer.RenderSafe(body)
	if err != nil {
		logger.Error("store.render_failed", "error", err)
		return domain.RenderedBlog{}, goerrors.Wrap(err, goerrors.CategoryInternal, "render blog "+id).
			WithTextCode("BLOG_RENDER_FAILED")
	}

	if s.deps.Highlighter != nil {
		if upgraded, herr := s.deps.Highlighter.Highlight(ctx, html); herr != nil {
			logger.Warn("store.highlight_failed", "error", herr)
		} else {
			html = upgraded
		}
	}

	s.deps.Metrics.ObserveRender(time.Since(started).Seconds())
	return domain.RenderedBlog{
		ID:   id,
		HTML: html,
		TOC:  s.deps.Renderer.ExtractTOC(body),
	}, nil
}
