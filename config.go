package blog

import "github.com/goliatone/go-blog/internal/runtimeconfig"

var (
	ErrContentDirRequired     = runtimeconfig.ErrContentDirRequired
	ErrOutputDirRequired      = runtimeconfig.ErrOutputDirRequired
	ErrBaseURLInvalid         = runtimeconfig.ErrBaseURLInvalid
	ErrWorkersInvalid         = runtimeconfig.ErrWorkersInvalid
	ErrFeedLimitInvalid       = runtimeconfig.ErrFeedLimitInvalid
	ErrCacheCapacityInvalid   = runtimeconfig.ErrCacheCapacityInvalid
	ErrCacheEvictionInvalid   = runtimeconfig.ErrCacheEvictionInvalid
	ErrLoggingProviderUnknown = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid    = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid   = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config           = runtimeconfig.Config
	SiteConfig       = runtimeconfig.SiteConfig
	ContentConfig    = runtimeconfig.ContentConfig
	CategoriesConfig = runtimeconfig.CategoriesConfig
	MarkdownConfig   = runtimeconfig.MarkdownConfig
	HighlightConfig  = runtimeconfig.HighlightConfig
	CacheConfig      = runtimeconfig.CacheConfig
	GeneratorConfig  = runtimeconfig.GeneratorConfig
	CommandsConfig   = runtimeconfig.CommandsConfig
	LoggingConfig    = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
