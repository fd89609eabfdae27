package sitecmd

import (
	"context"
	"errors"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-blog/internal/commands"
	"github.com/goliatone/go-blog/internal/generator"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CronRegistrar matches the function signature used by go-command registries.
type CronRegistrar func(command.HandlerConfig, any) error

// HandlerSet groups the site command handlers.
type HandlerSet struct {
	Reload *ReloadContentHandler
	Build  *BuildSiteHandler
	Toggle *ToggleCategoryHandler
}

// Config carries the handler wide settings.
type Config struct {
	// Timeout bounds each command run; zero keeps commands.DefaultTimeout.
	Timeout time.Duration
}

// RegisterSiteCommands builds the site handlers and registers them with reg
// when it is non-nil.
func RegisterSiteCommands(reg CommandRegistry, content Content, service generator.Service, provider interfaces.LoggerProvider, cfg Config) (*HandlerSet, error) {
	if content == nil {
		return nil, errors.New("site command registration: content is nil")
	}
	logger := commands.Logger(provider, "site")

	var (
		reloadOpts []commands.HandlerOption[ReloadContentCommand]
		buildOpts  []commands.HandlerOption[BuildSiteCommand]
		toggleOpts []commands.HandlerOption[ToggleCategoryCommand]
	)
	if cfg.Timeout > 0 {
		reloadOpts = append(reloadOpts, commands.WithTimeout[ReloadContentCommand](cfg.Timeout))
		buildOpts = append(buildOpts, commands.WithTimeout[BuildSiteCommand](cfg.Timeout))
		toggleOpts = append(toggleOpts, commands.WithTimeout[ToggleCategoryCommand](cfg.Timeout))
	}

	set := &HandlerSet{
		Reload: NewReloadContentHandler(content, logger, reloadOpts...),
		Build:  NewBuildSiteHandler(service, content, logger, buildOpts...),
		Toggle: NewToggleCategoryHandler(content, logger, toggleOpts...),
	}

	if reg != nil {
		for _, handler := range []any{set.Reload, set.Build, set.Toggle} {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

// RegisterReloadCron schedules periodic content reloads.
func RegisterReloadCron(reg CronRegistrar, handler *ReloadContentHandler, cfg command.HandlerConfig) error {
	if reg == nil || handler == nil {
		return nil
	}
	return reg(cfg, func() error {
		return handler.Execute(context.Background(), ReloadContentCommand{})
	})
}
