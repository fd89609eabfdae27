package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-blog/internal/domain"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/metrics"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

var (
	// ErrServiceDisabled indicates the generator feature is disabled.
	ErrServiceDisabled = errors.New("generator: service disabled")
	errSourceRequired  = errors.New("generator: blog source is required")
)

// Service describes the static site generator contract.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
}

// Source is the read side of the blog store the generator renders from.
type Source interface {
	List() []domain.BlogItem
	Recent(limit int) []domain.BlogItem
	Content(id string) (domain.BlogContent, error)
	Rendered(ctx context.Context, id string) (domain.RenderedBlog, error)
	SearchItems() []domain.SearchItem
	Categories() []*domain.BlogCategory
}

// StyleSheet writes the stylesheet for highlighted code.
type StyleSheet interface {
	CSS(w io.Writer) error
}

// Config captures runtime behaviour toggles for the generator.
type Config struct {
	OutputDir    string
	BaseURL      string
	SiteName     string
	Description  string
	Author       string
	Locale       string
	TemplatePath string

	CleanBuild      bool
	GenerateSitemap bool
	GenerateRobots  bool
	GenerateFeed    bool
	GenerateData    bool
	FeedLimit       int
	Workers         int
	// RenderTimeout bounds a single post render. Zero means no bound.
	RenderTimeout time.Duration
}

// BuildOptions narrows the scope of a generator run.
type BuildOptions struct {
	// OutputDir overrides Config.OutputDir for this run.
	OutputDir string
	// IDs limits post pages to the given blogs. Site wide artefacts are
	// still produced from the full corpus.
	IDs    []string
	DryRun bool
}

// Artifact describes one generated file.
type Artifact struct {
	Path     string
	Kind     string
	Size     int64
	Checksum string
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	PagesBuilt int
	Artifacts  []Artifact
	Duration   time.Duration
	Errors     []error
	DryRun     bool
	OutputDir  string
}

// Dependencies lists the collaborators required by the generator.
type Dependencies struct {
	Source Source
	// Styles is optional; without it no highlight stylesheet is written.
	Styles  StyleSheet
	Writer  Writer
	Metrics *metrics.Metrics
	Logger  interfaces.Logger
	Now     func() time.Time
}

// NewService wires a generator with the provided configuration and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	if deps.Logger == nil {
		deps.Logger = logging.NoOp()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &service{cfg: cfg, deps: deps}
}

// NewDisabledService returns a Service that fails all operations with ErrServiceDisabled.
func NewDisabledService() Service {
	return disabledService{}
}

type disabledService struct{}

func (disabledService) Build(context.Context, BuildOptions) (*BuildResult, error) {
	return nil, ErrServiceDisabled
}

type service struct {
	cfg  Config
	deps Dependencies
}

type run struct {
	*service
	writer    Writer
	site      SiteMetadata
	layout    *layout
	generated time.Time
	dryRun    bool

	mu        sync.Mutex
	artifacts []Artifact
	errs      []error
}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.deps.Source == nil {
		return nil, errSourceRequired
	}

	start := time.Now()
	outputDir := strings.TrimSpace(opts.OutputDir)
	if outputDir == "" {
		outputDir = s.cfg.OutputDir
	}

	tpl, err := loadLayout(s.cfg.TemplatePath)
	if err != nil {
		return nil, err
	}

	writer := s.deps.Writer
	switch {
	case opts.DryRun:
		writer = discardWriter{}
	case writer == nil:
		writer = NewDirWriter(outputDir)
	}

	r := &run{
		service:   s,
		writer:    writer,
		site:      s.siteMetadata(),
		layout:    tpl,
		generated: s.deps.Now().UTC(),
		dryRun:    opts.DryRun,
	}
	logger := logging.WithFields(s.deps.Logger.WithContext(ctx), map[string]any{
		"output_dir": outputDir,
		"dry_run":    opts.DryRun,
	})

	if s.cfg.CleanBuild && !opts.DryRun {
		if err := writer.Clean(ctx); err != nil {
			return nil, fmt.Errorf("generator: clean output: %w", err)
		}
	}

	items := s.deps.Source.List()
	posts := r.posts(items)
	selected := selectItems(items, opts.IDs)

	built, err := r.renderPosts(ctx, selected)
	if err != nil {
		r.fail(err)
	}
	r.renderStatic(ctx)

	if s.cfg.GenerateSitemap {
		r.emit(ctx, "sitemap.xml", kindSitemap, "application/xml", []byte(buildSitemap(r.site.BaseURL, posts, r.generated)))
	}
	if s.cfg.GenerateRobots {
		r.emit(ctx, "robots.txt", kindRobots, "text/plain", []byte(buildRobots(r.site.BaseURL, s.cfg.GenerateSitemap)))
	}
	if s.cfg.GenerateFeed {
		recent := r.posts(s.deps.Source.Recent(feedLimit(s.cfg.FeedLimit)))
		r.emit(ctx, "feed.xml", kindFeed, "application/atom+xml", []byte(buildAtomFeed(r.site, recent, r.generated)))
	}
	if s.cfg.GenerateData {
		r.writeData(ctx, posts)
	}
	if s.deps.Styles != nil {
		r.writeStyles(ctx)
	}

	sort.Slice(r.artifacts, func(i, j int) bool { return r.artifacts[i].Path < r.artifacts[j].Path })
	result := &BuildResult{
		PagesBuilt: built,
		Artifacts:  r.artifacts,
		Duration:   time.Since(start),
		Errors:     r.errs,
		DryRun:     opts.DryRun,
		OutputDir:  outputDir,
	}

	if len(r.errs) > 0 {
		logger.Error("generator.build_failed", "errors", len(r.errs), "pages", built)
		return result, errors.Join(r.errs...)
	}
	logger.Info("generator.build_completed",
		"pages", built,
		"artifacts", len(r.artifacts),
		"duration", result.Duration,
	)
	return result, nil
}

// renderPosts renders one page per selected blog using at most Workers
// goroutines. A failing post is recorded and does not stop the others.
func (r *run) renderPosts(ctx context.Context, items []domain.BlogItem) (int, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workerCount())

	var (
		mu    sync.Mutex
		built int
	)
	for _, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := r.renderPost(gctx, item); err != nil {
				r.fail(fmt.Errorf("generator: blog %s: %w", item.ID, err))
				return nil
			}
			mu.Lock()
			built++
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	return built, err
}

func (r *run) renderPost(ctx context.Context, item domain.BlogItem) error {
	if r.cfg.RenderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.RenderTimeout)
		defer cancel()
	}

	content, err := r.deps.Source.Content(item.ID)
	if err != nil {
		return err
	}
	rendered, err := r.deps.Source.Rendered(ctx, item.ID)
	if err != nil {
		return err
	}

	page := newPostContext(r.site, item, content, rendered)
	body, err := r.layout.render(TemplateContext{
		Site:  r.site,
		Page:  page,
		Build: BuildMetadata{GeneratedAt: r.generated},
	})
	if err != nil {
		return err
	}
	return r.write(ctx, postOutputPath(item.ID), kindPage, "text/html", body)
}

// renderStatic writes the not-found and error pages.
func (r *run) renderStatic(ctx context.Context) {
	for _, page := range []PageContext{notFoundPage(r.site), errorPage(r.site)} {
		body, err := r.layout.render(TemplateContext{
			Site:  r.site,
			Page:  page,
			Build: BuildMetadata{GeneratedAt: r.generated},
		})
		if err != nil {
			r.fail(err)
			continue
		}
		r.emit(ctx, path.Join(page.Slug, "index.html"), kindPage, "text/html", body)
	}
}

func (r *run) workerCount() int {
	if r.cfg.Workers > 0 {
		return r.cfg.Workers
	}
	return max(runtime.GOMAXPROCS(0), 1)
}

// emit writes and records any failure on the run.
func (r *run) emit(ctx context.Context, rel, kind, contentType string, body []byte) {
	if err := r.write(ctx, rel, kind, contentType, body); err != nil {
		r.fail(err)
	}
}

func (r *run) write(ctx context.Context, rel, kind, contentType string, body []byte) error {
	artifact := Artifact{
		Path:     rel,
		Kind:     kind,
		Size:     int64(len(body)),
		Checksum: checksum(body),
	}
	err := r.writer.WriteFile(ctx, writeFileRequest{
		Path:        rel,
		Content:     body,
		Category:    kind,
		ContentType: contentType,
		Checksum:    artifact.Checksum,
	})
	if err != nil {
		return fmt.Errorf("generator: write %s: %w", rel, err)
	}
	if !r.dryRun {
		r.deps.Metrics.PageWritten(kind)
	}
	r.mu.Lock()
	r.artifacts = append(r.artifacts, artifact)
	r.mu.Unlock()
	return nil
}

func (r *run) fail(err error) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
}

func (r *run) posts(items []domain.BlogItem) []post {
	out := make([]post, 0, len(items))
	for _, item := range items {
		content, err := r.deps.Source.Content(item.ID)
		if err != nil {
			r.fail(fmt.Errorf("generator: blog %s: %w", item.ID, err))
			continue
		}
		out = append(out, post{Item: item, Content: content})
	}
	return out
}

func (s *service) siteMetadata() SiteMetadata {
	name := strings.TrimSpace(s.cfg.SiteName)
	if name == "" {
		name = baseURLWithFallback(s.cfg.BaseURL)
	}
	return SiteMetadata{
		Name:        name,
		Description: strings.TrimSpace(s.cfg.Description),
		BaseURL:     baseURLWithFallback(s.cfg.BaseURL),
		Locale:      strings.TrimSpace(s.cfg.Locale),
		Author:      strings.TrimSpace(s.cfg.Author),
	}
}

func selectItems(items []domain.BlogItem, ids []string) []domain.BlogItem {
	if len(ids) == 0 {
		return items
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			wanted[id] = struct{}{}
		}
	}
	out := make([]domain.BlogItem, 0, len(wanted))
	for _, item := range items {
		if _, ok := wanted[item.ID]; ok {
			out = append(out, item)
		}
	}
	return out
}
