package sitecmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-blog/internal/commands"
	"github.com/goliatone/go-blog/internal/domain"
	"github.com/goliatone/go-blog/internal/generator"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

const (
	reloadOperation = "site.reload_content"
	buildOperation  = "site.build"
	toggleOperation = "site.toggle_category"
)

// ErrCategoryNotFound is returned when a toggle names an unknown category.
var ErrCategoryNotFound = errors.New("site command: category not found")

// Content is the slice of the blog store the handlers drive.
type Content interface {
	Load(ctx context.Context) error
	List() []domain.BlogItem
	ToggleCategory(path string) []*domain.BlogCategory
	Categories() []*domain.BlogCategory
}

var (
	_ command.Commander[ReloadContentCommand]  = (*ReloadContentHandler)(nil)
	_ command.Commander[BuildSiteCommand]      = (*BuildSiteHandler)(nil)
	_ command.Commander[ToggleCategoryCommand] = (*ToggleCategoryHandler)(nil)
)

// ReloadContentHandler reloads the store.
type ReloadContentHandler struct {
	inner *commands.Handler[ReloadContentCommand]
}

// NewReloadContentHandler constructs a handler bound to content.
func NewReloadContentHandler(content Content, logger interfaces.Logger, opts ...commands.HandlerOption[ReloadContentCommand]) *ReloadContentHandler {
	baseLogger := orNoOp(logger)
	exec := func(ctx context.Context, _ ReloadContentCommand) error {
		if err := content.Load(ctx); err != nil {
			return err
		}
		baseLogger.Info("site.command.reload_content.completed", "blogs", len(content.List()))
		return nil
	}

	handlerOpts := []commands.HandlerOption[ReloadContentCommand]{
		commands.WithLogger[ReloadContentCommand](baseLogger),
		commands.WithOperation[ReloadContentCommand](reloadOperation),
		commands.WithTelemetry(commands.DefaultTelemetry[ReloadContentCommand](baseLogger)),
	}
	return &ReloadContentHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
	}
}

// Execute satisfies command.Commander[ReloadContentCommand].
func (h *ReloadContentHandler) Execute(ctx context.Context, msg ReloadContentCommand) error {
	return h.inner.Execute(ctx, msg)
}

// BuildSiteHandler runs generator builds.
type BuildSiteHandler struct {
	inner *commands.Handler[BuildSiteCommand]
}

// NewBuildSiteHandler constructs a handler wired to the generator service.
// content may be nil when reloads are never requested.
func NewBuildSiteHandler(service generator.Service, content Content, logger interfaces.Logger, opts ...commands.HandlerOption[BuildSiteCommand]) *BuildSiteHandler {
	baseLogger := orNoOp(logger)
	exec := func(ctx context.Context, msg BuildSiteCommand) error {
		if service == nil {
			return generator.ErrServiceDisabled
		}
		if msg.Reload && content != nil {
			if err := content.Load(ctx); err != nil {
				return err
			}
		}

		result, err := service.Build(ctx, generator.BuildOptions{
			OutputDir: msg.OutputDir,
			IDs:       append([]string(nil), msg.IDs...),
			DryRun:    msg.DryRun,
		})
		if msg.ResultCallback != nil && result != nil {
			msg.ResultCallback(result)
		}
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"pages":     result.PagesBuilt,
			"artifacts": len(result.Artifacts),
			"dry_run":   result.DryRun,
		}).Info("site.command.build.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[BuildSiteCommand]{
		commands.WithLogger[BuildSiteCommand](baseLogger),
		commands.WithOperation[BuildSiteCommand](buildOperation),
		commands.WithMessageFields(func(msg BuildSiteCommand) map[string]any {
			fields := map[string]any{}
			if msg.OutputDir != "" {
				fields["output_dir"] = msg.OutputDir
			}
			if len(msg.IDs) > 0 {
				fields["ids"] = len(msg.IDs)
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			if msg.Reload {
				fields["reload"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildSiteCommand](baseLogger)),
	}
	return &BuildSiteHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
	}
}

// Execute satisfies command.Commander[BuildSiteCommand].
func (h *BuildSiteHandler) Execute(ctx context.Context, msg BuildSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ToggleCategoryHandler flips a category node in the store.
type ToggleCategoryHandler struct {
	inner *commands.Handler[ToggleCategoryCommand]
}

// NewToggleCategoryHandler constructs a handler bound to content.
func NewToggleCategoryHandler(content Content, logger interfaces.Logger, opts ...commands.HandlerOption[ToggleCategoryCommand]) *ToggleCategoryHandler {
	baseLogger := orNoOp(logger)
	exec := func(_ context.Context, msg ToggleCategoryCommand) error {
		before := content.Categories()
		after := content.ToggleCategory(msg.Path)
		if sameTree(before, after) {
			return ErrCategoryNotFound
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ToggleCategoryCommand]{
		commands.WithLogger[ToggleCategoryCommand](baseLogger),
		commands.WithOperation[ToggleCategoryCommand](toggleOperation),
		commands.WithMessageFields(func(msg ToggleCategoryCommand) map[string]any {
			return map[string]any{"category": msg.Path}
		}),
	}
	return &ToggleCategoryHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
	}
}

// Execute satisfies command.Commander[ToggleCategoryCommand].
func (h *ToggleCategoryHandler) Execute(ctx context.Context, msg ToggleCategoryCommand) error {
	return h.inner.Execute(ctx, msg)
}

// sameTree reports whether a toggle returned the tree unchanged, which is
// how an unknown path is signalled.
func sameTree(a, b []*domain.BlogCategory) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func orNoOp(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return logging.NoOp()
	}
	return logger
}
