package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrContentDirRequired = errors.New("blog config: content directory is required")
var ErrOutputDirRequired = errors.New("blog config: generator output directory is required")
var ErrBaseURLInvalid = errors.New("blog config: site base URL must be absolute http(s)")
var ErrWorkersInvalid = errors.New("blog config: generator workers must be zero or positive")
var ErrFeedLimitInvalid = errors.New("blog config: feed limit must be zero or positive")
var ErrCacheCapacityInvalid = errors.New("blog config: cache capacity and shards must be positive when cache is enabled")
var ErrCacheEvictionInvalid = errors.New("blog config: cache eviction percentage must be between 1 and 100")
var ErrLoggingProviderUnknown = errors.New("blog config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("blog config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("blog config: logging format is invalid")

// Config aggregates every setting of the blog pipeline. Tags follow the
// mapstructure convention so the CLI can bind it from files, env and flags.
type Config struct {
	Site       SiteConfig       `mapstructure:"site"`
	Content    ContentConfig    `mapstructure:"content"`
	Categories CategoriesConfig `mapstructure:"categories"`
	Markdown   MarkdownConfig   `mapstructure:"markdown"`
	Highlight  HighlightConfig  `mapstructure:"highlight"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Generator  GeneratorConfig  `mapstructure:"generator"`
	Commands   CommandsConfig   `mapstructure:"commands"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// SiteConfig carries the metadata written into pages, sitemap and feed.
type SiteConfig struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	BaseURL     string `mapstructure:"base_url"`
	Locale      string `mapstructure:"locale"`
	Author      string `mapstructure:"author"`
}

// ContentConfig controls document discovery and id derivation.
type ContentConfig struct {
	Dir     string `mapstructure:"dir"`
	Pattern string `mapstructure:"pattern"`
	Flat    bool   `mapstructure:"flat"`
	// PreserveNativeIDs keeps non-ASCII letters in path derived ids.
	PreserveNativeIDs bool `mapstructure:"preserve_native_ids"`
}

// CategoriesConfig controls category tree construction.
type CategoriesConfig struct {
	Uncategorized       string   `mapstructure:"uncategorized"`
	AlwaysUncategorized bool     `mapstructure:"always_uncategorized"`
	Locale              string   `mapstructure:"locale"`
	ExpandBlogID        string   `mapstructure:"expand_blog_id"`
	ExpandPaths         []string `mapstructure:"expand_paths"`
	ExpandFirst         bool     `mapstructure:"expand_first"`
}

// MarkdownConfig mirrors interfaces.ParseOptions.
type MarkdownConfig struct {
	Extensions  []string `mapstructure:"extensions"`
	HardWraps   bool     `mapstructure:"hard_wraps"`
	Typographer bool     `mapstructure:"typographer"`
}

// HighlightConfig configures the code highlighter.
type HighlightConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Style     string   `mapstructure:"style"`
	Languages []string `mapstructure:"languages"`
}

// CacheConfig sizes the rendered post cache.
type CacheConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	Capacity           int           `mapstructure:"capacity"`
	Shards             int           `mapstructure:"shards"`
	TTL                time.Duration `mapstructure:"ttl"`
	EvictionPercentage int           `mapstructure:"eviction_percentage"`
}

// GeneratorConfig captures behaviour for the static site generator.
type GeneratorConfig struct {
	OutputDir     string        `mapstructure:"output_dir"`
	TemplatePath  string        `mapstructure:"template_path"`
	CleanBuild    bool          `mapstructure:"clean_build"`
	Sitemap       bool          `mapstructure:"sitemap"`
	Robots        bool          `mapstructure:"robots"`
	Feed          bool          `mapstructure:"feed"`
	FeedLimit     int           `mapstructure:"feed_limit"`
	DataFiles     bool          `mapstructure:"data_files"`
	Workers       int           `mapstructure:"workers"`
	RenderTimeout time.Duration `mapstructure:"render_timeout"`
}

// CommandsConfig captures command handler behaviour.
type CommandsConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `mapstructure:"provider"`
	Level     string   `mapstructure:"level"`
	Format    string   `mapstructure:"format"`
	AddSource bool     `mapstructure:"add_source"`
	Focus     []string `mapstructure:"focus"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Site: SiteConfig{
			Name:   "Blog",
			Locale: "en",
		},
		Content: ContentConfig{
			Dir:     "blogs",
			Pattern: "*.md",
		},
		Categories: CategoriesConfig{
			Uncategorized: "Uncategorized",
		},
		Markdown: MarkdownConfig{
			Extensions:  []string{"table", "strikethrough", "linkify"},
			Typographer: true,
		},
		Highlight: HighlightConfig{
			Enabled: true,
			Style:   "github",
		},
		Cache: CacheConfig{
			Enabled:            true,
			Capacity:           512,
			Shards:             8,
			TTL:                time.Hour,
			EvictionPercentage: 10,
		},
		Generator: GeneratorConfig{
			OutputDir:  "dist",
			CleanBuild: true,
			Sitemap:    true,
			Robots:     true,
			Feed:       true,
			FeedLimit:  100,
			DataFiles:  true,
		},
		Commands: CommandsConfig{
			Timeout: 2 * time.Minute,
		},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "console",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Content.Dir) == "" {
		return ErrContentDirRequired
	}
	if strings.TrimSpace(cfg.Generator.OutputDir) == "" {
		return ErrOutputDirRequired
	}
	if base := strings.TrimSpace(cfg.Site.BaseURL); base != "" {
		if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
			return fmt.Errorf("%w: %s", ErrBaseURLInvalid, base)
		}
	}
	if cfg.Generator.Workers < 0 {
		return ErrWorkersInvalid
	}
	if cfg.Generator.FeedLimit < 0 {
		return ErrFeedLimitInvalid
	}
	if cfg.Cache.Enabled {
		if cfg.Cache.Capacity <= 0 || cfg.Cache.Shards <= 0 {
			return ErrCacheCapacityInvalid
		}
		if cfg.Cache.EvictionPercentage < 1 || cfg.Cache.EvictionPercentage > 100 {
			return ErrCacheEvictionInvalid
		}
	}

	provider := normalize(cfg.Logging.Provider)
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "", "none", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
