package di

import (
	"fmt"
	"io/fs"
	"strings"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-blog/internal/categories"
	sitecmd "github.com/goliatone/go-blog/internal/commands/site"
	"github.com/goliatone/go-blog/internal/generator"
	"github.com/goliatone/go-blog/internal/highlight"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/logging/gologger"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/metrics"
	"github.com/goliatone/go-blog/internal/runtimeconfig"
	"github.com/goliatone/go-blog/internal/store"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Container wires the blog pipeline: loader, renderer, highlighter, store,
// generator and the site command handlers.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger
	metrics        *metrics.Metrics
	now            func() time.Time

	contentFS fs.FS
	writer    generator.Writer
	sanitizer interfaces.HTMLSanitizer

	commandRegistry sitecmd.CommandRegistry
	cronRegistrar   sitecmd.CronRegistrar
	reloadSchedule  string

	loader       *markdown.Loader
	renderer     *markdown.Renderer
	highlighter  *highlight.Highlighter
	store        *store.Store
	generatorSvc generator.Service
	siteHandlers *sitecmd.HandlerSet
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the logger provider selected by configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithMetrics shares a metrics set instead of creating a fresh registry.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Container) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithContentFS reads posts from fsys instead of the content directory on
// disk. Content.Dir is then resolved inside fsys.
func WithContentFS(fsys fs.FS) Option {
	return func(c *Container) {
		c.contentFS = fsys
	}
}

// WithNow fixes the clock used for default dates and build timestamps.
func WithNow(now func() time.Time) Option {
	return func(c *Container) {
		if now != nil {
			c.now = now
		}
	}
}

// WithWriter overrides where the generator writes artifacts.
func WithWriter(w generator.Writer) Option {
	return func(c *Container) {
		c.writer = w
	}
}

// WithSanitizer replaces the default HTML allow-list.
func WithSanitizer(s interfaces.HTMLSanitizer) Option {
	return func(c *Container) {
		c.sanitizer = s
	}
}

// WithCommandRegistry registers the site command handlers with reg.
func WithCommandRegistry(reg sitecmd.CommandRegistry) Option {
	return func(c *Container) {
		c.commandRegistry = reg
	}
}

// WithCronRegistrar schedules content reloads with the cron expression.
func WithCronRegistrar(reg sitecmd.CronRegistrar, expression string) Option {
	return func(c *Container) {
		c.cronRegistrar = reg
		c.reloadSchedule = strings.TrimSpace(expression)
	}
}

// NewContainer validates cfg and builds every component. Content is not
// loaded; call Store().Load before reading.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config: cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if c.metrics == nil {
		c.metrics = metrics.New()
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, "blog.di")

	if err := c.configureLoader(); err != nil {
		return nil, err
	}
	c.configureMarkdown()
	c.configureHighlighter()
	if err := c.configureStore(); err != nil {
		return nil, err
	}
	c.configureGenerator()
	if err := c.configureCommands(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		c.loggerProvider = nil
	}
	return nil
}

func (c *Container) configureLoader() error {
	cfg := markdown.LoaderConfig{
		Pattern: c.Config.Content.Pattern,
		Flat:    c.Config.Content.Flat,
		Now:     c.now,
	}
	if c.contentFS != nil {
		cfg.Root = c.Config.Content.Dir
		c.loader = markdown.NewLoader(c.contentFS, cfg)
		return nil
	}
	loader, err := markdown.NewDirLoader(c.Config.Content.Dir, cfg)
	if err != nil {
		return fmt.Errorf("di: content loader: %w", err)
	}
	c.loader = loader
	return nil
}

func (c *Container) configureMarkdown() {
	typographer := c.Config.Markdown.Typographer
	c.renderer = markdown.NewRenderer(markdown.Config{
		Parser: interfaces.ParseOptions{
			Extensions:  append([]string(nil), c.Config.Markdown.Extensions...),
			HardWraps:   c.Config.Markdown.HardWraps,
			Typographer: &typographer,
		},
		Sanitizer: c.sanitizer,
		Logger:    logging.MarkdownLogger(c.loggerProvider),
	})
}

func (c *Container) configureHighlighter() {
	if !c.Config.Highlight.Enabled {
		return
	}
	m := c.metrics
	c.highlighter = highlight.New(highlight.Config{
		Style:     c.Config.Highlight.Style,
		Languages: append([]string(nil), c.Config.Highlight.Languages...),
		Logger:    logging.HighlightLogger(c.loggerProvider),
		OnFailure: func(language string, _ error) {
			m.HighlightFailed(language)
		},
	})
}

func (c *Container) configureStore() error {
	deps := store.Dependencies{
		Source:   c.loader,
		Renderer: c.renderer,
		Metrics:  c.metrics,
		Logger:   logging.StoreLogger(c.loggerProvider),
		Now:      c.now,
	}
	if c.highlighter != nil {
		deps.Highlighter = c.highlighter
	}

	cats := c.Config.Categories
	s, err := store.New(store.Config{
		PreserveNativeIDs: c.Config.Content.PreserveNativeIDs,
		Categories: categories.Options{
			Uncategorized:       cats.Uncategorized,
			AlwaysUncategorized: cats.AlwaysUncategorized,
			Locale:              cats.Locale,
			ExpandBlogID:        cats.ExpandBlogID,
			ExpandPaths:         append([]string(nil), cats.ExpandPaths...),
			ExpandFirst:         cats.ExpandFirst,
			Logger:              logging.CategoriesLogger(c.loggerProvider),
		},
		Cache: store.CacheConfig{
			Enabled:            c.Config.Cache.Enabled,
			Capacity:           c.Config.Cache.Capacity,
			Shards:             c.Config.Cache.Shards,
			TTL:                c.Config.Cache.TTL,
			EvictionPercentage: c.Config.Cache.EvictionPercentage,
		},
	}, deps)
	if err != nil {
		return fmt.Errorf("di: store: %w", err)
	}
	c.store = s
	return nil
}

func (c *Container) configureGenerator() {
	site := c.Config.Site
	gen := c.Config.Generator
	deps := generator.Dependencies{
		Source:  c.store,
		Writer:  c.writer,
		Metrics: c.metrics,
		Logger:  logging.GeneratorLogger(c.loggerProvider),
		Now:     c.now,
	}
	if c.highlighter != nil {
		deps.Styles = c.highlighter
	}
	c.generatorSvc = generator.NewService(generator.Config{
		OutputDir:       gen.OutputDir,
		BaseURL:         site.BaseURL,
		SiteName:        site.Name,
		Description:     site.Description,
		Author:          site.Author,
		Locale:          site.Locale,
		TemplatePath:    gen.TemplatePath,
		CleanBuild:      gen.CleanBuild,
		GenerateSitemap: gen.Sitemap,
		GenerateRobots:  gen.Robots,
		GenerateFeed:    gen.Feed,
		GenerateData:    gen.DataFiles,
		FeedLimit:       gen.FeedLimit,
		Workers:         gen.Workers,
		RenderTimeout:   gen.RenderTimeout,
	}, deps)
}

func (c *Container) configureCommands() error {
	set, err := sitecmd.RegisterSiteCommands(c.commandRegistry, c.store, c.generatorSvc, c.loggerProvider, sitecmd.Config{
		Timeout: c.Config.Commands.Timeout,
	})
	if err != nil {
		return fmt.Errorf("di: site commands: %w", err)
	}
	c.siteHandlers = set

	if c.cronRegistrar != nil && c.reloadSchedule != "" {
		cfg := command.HandlerConfig{Expression: c.reloadSchedule}
		if err := sitecmd.RegisterReloadCron(c.cronRegistrar, set.Reload, cfg); err != nil {
			return fmt.Errorf("di: reload cron: %w", err)
		}
		c.logger.Info("content reload scheduled", "expression", c.reloadSchedule)
	}
	return nil
}

// LoggerProvider returns the provider used for module loggers; nil means no-op.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Metrics returns the collectors shared by every component.
func (c *Container) Metrics() *metrics.Metrics {
	return c.metrics
}

// Loader returns the markdown document loader.
func (c *Container) Loader() *markdown.Loader {
	return c.loader
}

// Renderer returns the markdown renderer.
func (c *Container) Renderer() *markdown.Renderer {
	return c.renderer
}

// Highlighter returns the code highlighter, nil when highlighting is disabled.
func (c *Container) Highlighter() *highlight.Highlighter {
	return c.highlighter
}

// Store returns the content store.
func (c *Container) Store() *store.Store {
	return c.store
}

// GeneratorService returns the static site generator.
func (c *Container) GeneratorService() generator.Service {
	return c.generatorSvc
}

// SiteCommands returns the site command handlers.
func (c *Container) SiteCommands() *sitecmd.HandlerSet {
	return c.siteHandlers
}
