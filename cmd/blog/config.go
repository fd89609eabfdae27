package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/goliatone/go-blog"
)

const (
	configName = "blog"
	envPrefix  = "BLOG"
)

// setDefaults seeds every key so AutomaticEnv can resolve BLOG_* overrides
// for values that never appear in a config file.
func setDefaults(v *viper.Viper, cfg blog.Config) {
	v.SetDefault("site.name", cfg.Site.Name)
	v.SetDefault("site.description", cfg.Site.Description)
	v.SetDefault("site.base_url", cfg.Site.BaseURL)
	v.SetDefault("site.locale", cfg.Site.Locale)
	v.SetDefault("site.author", cfg.Site.Author)

	v.SetDefault("content.dir", cfg.Content.Dir)
	v.SetDefault("content.pattern", cfg.Content.Pattern)
	v.SetDefault("content.flat", cfg.Content.Flat)
	v.SetDefault("content.preserve_native_ids", cfg.Content.PreserveNativeIDs)

	v.SetDefault("categories.uncategorized", cfg.Categories.Uncategorized)
	v.SetDefault("categories.always_uncategorized", cfg.Categories.AlwaysUncategorized)
	v.SetDefault("categories.locale", cfg.Categories.Locale)
	v.SetDefault("categories.expand_blog_id", cfg.Categories.ExpandBlogID)
	v.SetDefault("categories.expand_paths", cfg.Categories.ExpandPaths)
	v.SetDefault("categories.expand_first", cfg.Categories.ExpandFirst)

	v.SetDefault("markdown.extensions", cfg.Markdown.Extensions)
	v.SetDefault("markdown.hard_wraps", cfg.Markdown.HardWraps)
	v.SetDefault("markdown.typographer", cfg.Markdown.Typographer)

	v.SetDefault("highlight.enabled", cfg.Highlight.Enabled)
	v.SetDefault("highlight.style", cfg.Highlight.Style)
	v.SetDefault("highlight.languages", cfg.Highlight.Languages)

	v.SetDefault("cache.enabled", cfg.Cache.Enabled)
	v.SetDefault("cache.capacity", cfg.Cache.Capacity)
	v.SetDefault("cache.shards", cfg.Cache.Shards)
	v.SetDefault("cache.ttl", cfg.Cache.TTL)
	v.SetDefault("cache.eviction_percentage", cfg.Cache.EvictionPercentage)

	v.SetDefault("generator.output_dir", cfg.Generator.OutputDir)
	v.SetDefault("generator.template_path", cfg.Generator.TemplatePath)
	v.SetDefault("generator.clean_build", cfg.Generator.CleanBuild)
	v.SetDefault("generator.sitemap", cfg.Generator.Sitemap)
	v.SetDefault("generator.robots", cfg.Generator.Robots)
	v.SetDefault("generator.feed", cfg.Generator.Feed)
	v.SetDefault("generator.feed_limit", cfg.Generator.FeedLimit)
	v.SetDefault("generator.data_files", cfg.Generator.DataFiles)
	v.SetDefault("generator.workers", cfg.Generator.Workers)
	v.SetDefault("generator.render_timeout", cfg.Generator.RenderTimeout)

	v.SetDefault("commands.timeout", cfg.Commands.Timeout)

	v.SetDefault("logging.provider", cfg.Logging.Provider)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.add_source", cfg.Logging.AddSource)
	v.SetDefault("logging.focus", cfg.Logging.Focus)
}

// loadConfig resolves defaults, then blog.yaml (or file), then BLOG_*
// environment variables, then bound flags.
func loadConfig(v *viper.Viper, file string) (blog.Config, error) {
	setDefaults(v, blog.DefaultConfig())

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return blog.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg blog.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return blog.Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return blog.Config{}, err
	}
	return cfg, nil
}
