package blog

import (
	"errors"
	"fmt"
	"strings"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	sitecmd "github.com/goliatone/go-blog/internal/commands/site"
)

// Command messages accepted by the site handlers.
type (
	ReloadContentCommand  = sitecmd.ReloadContentCommand
	BuildSiteCommand      = sitecmd.BuildSiteCommand
	ToggleCategoryCommand = sitecmd.ToggleCategoryCommand
)

// CommandRegistry records command handlers so hosts can expose them via CLI or cron.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher implementation.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// CronRegistrar registers command handlers with a cron scheduler.
type CronRegistrar func(command.HandlerConfig, any) error

// RegistrationOptions configures how handlers are registered.
type RegistrationOptions struct {
	Registry      CommandRegistry
	Dispatcher    CommandDispatcher
	CronRegistrar CronRegistrar
	// ReloadCron schedules content reloads; empty disables the cron job.
	ReloadCron string
}

// RegistrationResult captures the handlers and any dispatcher subscriptions.
type RegistrationResult struct {
	Handlers      []any
	Subscriptions []CommandSubscription
}

// RegisterCommands exposes the module's site handlers to the given registry,
// dispatcher and cron integrations. Errors from individual integrations are
// joined; handlers are still returned.
func RegisterCommands(module *Module, opts RegistrationOptions) (*RegistrationResult, error) {
	result := &RegistrationResult{
		Handlers:      make([]any, 0),
		Subscriptions: make([]CommandSubscription, 0),
	}
	if module == nil || module.container == nil {
		return result, errors.New("blog: register commands: module is nil")
	}
	set := module.Commands()
	if set == nil {
		return result, errors.New("blog: register commands: no site handlers configured")
	}

	var errs error
	for _, handler := range []any{set.Reload, set.Build, set.Toggle} {
		result.Handlers = append(result.Handlers, handler)
		if opts.Registry != nil {
			if err := opts.Registry.RegisterCommand(handler); err != nil {
				errs = errors.Join(errs, err)
			}
		}
		if opts.Dispatcher != nil {
			subscription, err := opts.Dispatcher.RegisterCommand(handler)
			if err != nil {
				errs = errors.Join(errs, err)
			} else if subscription != nil {
				result.Subscriptions = append(result.Subscriptions, subscription)
			}
		}
	}

	if opts.CronRegistrar != nil {
		if expr := strings.TrimSpace(opts.ReloadCron); expr != "" {
			cfg := command.HandlerConfig{Expression: expr}
			if err := sitecmd.RegisterReloadCron(sitecmd.CronRegistrar(opts.CronRegistrar), set.Reload, cfg); err != nil {
				errs = errors.Join(errs, err)
			}
		}
	}
	return result, errs
}

// NewDispatcher subscribes site handlers to the go-command process dispatcher.
// runnerOpts apply to every subscription, e.g. runner.WithMaxRetries.
func NewDispatcher(runnerOpts ...runner.Option) CommandDispatcher {
	return globalDispatcher{opts: runnerOpts}
}

type globalDispatcher struct {
	opts []runner.Option
}

func (d globalDispatcher) RegisterCommand(handler any) (CommandSubscription, error) {
	switch h := handler.(type) {
	case *sitecmd.ReloadContentHandler:
		return dispatcher.SubscribeCommand[sitecmd.ReloadContentCommand](h, d.opts...), nil
	case *sitecmd.BuildSiteHandler:
		return dispatcher.SubscribeCommand[sitecmd.BuildSiteCommand](h, d.opts...), nil
	case *sitecmd.ToggleCategoryHandler:
		return dispatcher.SubscribeCommand[sitecmd.ToggleCategoryCommand](h, d.opts...), nil
	default:
		return nil, fmt.Errorf("blog: unsupported command handler %T", handler)
	}
}
