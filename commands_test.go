package blog_test

import (
	"context"
	"errors"
	"testing"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"

	"github.com/goliatone/go-blog"
	"github.com/goliatone/go-blog/internal/generator"
)

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

type recordingDispatcher struct {
	handlers []any
	err      error
}

type noopSubscription struct{}

func (noopSubscription) Unsubscribe() {}

func (d *recordingDispatcher) RegisterCommand(handler any) (blog.CommandSubscription, error) {
	if d.err != nil {
		return nil, d.err
	}
	d.handlers = append(d.handlers, handler)
	return noopSubscription{}, nil
}

type cronRegistration struct {
	config  command.HandlerConfig
	handler func() error
}

type recordingCron struct {
	registrations []cronRegistration
}

func (c *recordingCron) Registrar() blog.CronRegistrar {
	return func(cfg command.HandlerConfig, handler any) error {
		fn, _ := handler.(func() error)
		c.registrations = append(c.registrations, cronRegistration{config: cfg, handler: fn})
		return nil
	}
}

func TestRegisterCommandsBuildsHandlers(t *testing.T) {
	module := newModule(t, nil)
	registry := &recordingRegistry{}
	disp := &recordingDispatcher{}
	cron := &recordingCron{}

	result, err := blog.RegisterCommands(module, blog.RegistrationOptions{
		Registry:      registry,
		Dispatcher:    disp,
		CronRegistrar: cron.Registrar(),
		ReloadCron:    "@hourly",
	})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	if len(result.Handlers) != 3 || len(registry.handlers) != 3 {
		t.Fatalf("expected 3 handlers, got %d (registry %d)", len(result.Handlers), len(registry.handlers))
	}
	if len(result.Subscriptions) != 3 || len(disp.handlers) != 3 {
		t.Fatalf("expected 3 subscriptions, got %d", len(result.Subscriptions))
	}
	if len(cron.registrations) != 1 || cron.registrations[0].config.Expression != "@hourly" {
		t.Fatalf("unexpected cron registrations %#v", cron.registrations)
	}
	if err := cron.registrations[0].handler(); err != nil {
		t.Fatalf("cron reload: %v", err)
	}
}

func TestRegisterCommandsWithoutRegistrars(t *testing.T) {
	module := newModule(t, nil)

	result, err := blog.RegisterCommands(module, blog.RegistrationOptions{})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	if len(result.Handlers) != 3 {
		t.Fatalf("expected handlers to be built without registrars, got %d", len(result.Handlers))
	}
	if len(result.Subscriptions) != 0 {
		t.Fatalf("expected no subscriptions, got %d", len(result.Subscriptions))
	}
}

func TestRegisterCommandsJoinsDispatcherErrors(t *testing.T) {
	module := newModule(t, nil)
	boom := errors.New("dispatcher closed")

	result, err := blog.RegisterCommands(module, blog.RegistrationOptions{
		Dispatcher: &recordingDispatcher{err: boom},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected dispatcher error, got %v", err)
	}
	if len(result.Handlers) != 3 {
		t.Fatalf("expected handlers despite errors, got %d", len(result.Handlers))
	}
}

func TestRegisterCommandsNilModule(t *testing.T) {
	if _, err := blog.RegisterCommands(nil, blog.RegistrationOptions{}); err == nil {
		t.Fatal("expected error for nil module")
	}
}

func TestDispatcherRunsSiteCommands(t *testing.T) {
	writer := generator.NewMemoryWriter()
	module := newModule(t, nil, blog.WithWriter(writer))

	result, err := blog.RegisterCommands(module, blog.RegistrationOptions{
		Dispatcher: blog.NewDispatcher(),
	})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	t.Cleanup(func() {
		for _, sub := range result.Subscriptions {
			sub.Unsubscribe()
		}
	})

	ctx := context.Background()
	if err := dispatcher.Dispatch(ctx, blog.ReloadContentCommand{}); err != nil {
		t.Fatalf("dispatch reload: %v", err)
	}

	var built *blog.BuildResult
	err = dispatcher.Dispatch(ctx, blog.BuildSiteCommand{
		ResultCallback: func(res *blog.BuildResult) { built = res },
	})
	if err != nil {
		t.Fatalf("dispatch build: %v", err)
	}
	if built == nil || built.PagesBuilt != 3 {
		t.Fatalf("expected 3 pages, got %#v", built)
	}
	if _, ok := writer.File("blog/welcome/index.html"); !ok {
		t.Fatalf("expected welcome page, got %v", writer.Paths())
	}

	if err := dispatcher.Dispatch(ctx, blog.ToggleCategoryCommand{Path: "unknown"}); err == nil {
		t.Fatal("expected toggle of unknown category to fail")
	}
}
