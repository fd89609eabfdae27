package sitecmd

import (
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-blog/internal/generator"
)

const (
	reloadContentMessageType  = "blog.site.reload_content"
	buildSiteMessageType      = "blog.site.build"
	toggleCategoryMessageType = "blog.site.toggle_category"
)

// ResultCallback receives the generator result of a build. It runs
// synchronously inside the handler.
type ResultCallback func(*generator.BuildResult)

// ReloadContentCommand rereads the content directory and swaps in a new
// store snapshot.
type ReloadContentCommand struct{}

// Type implements command.Message.
func (ReloadContentCommand) Type() string { return reloadContentMessageType }

// Validate implements command.Message; the command carries no input.
func (ReloadContentCommand) Validate() error { return nil }

// BuildSiteCommand renders the static site.
type BuildSiteCommand struct {
	// OutputDir overrides the configured output directory.
	OutputDir string `json:"output_dir,omitempty"`
	// IDs limits post pages to the listed blogs.
	IDs []string `json:"ids,omitempty"`
	// DryRun computes the build without writing files.
	DryRun bool `json:"dry_run,omitempty"`
	// Reload refreshes the store before building.
	Reload         bool           `json:"reload,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate rejects output directories that would clean the working tree and
// blank blog ids.
func (cmd BuildSiteCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.OutputDir, validation.By(func(value any) error {
			dir := strings.TrimSpace(value.(string))
			if dir == "" {
				return nil
			}
			if clean := filepath.Clean(dir); clean == "." || clean == string(filepath.Separator) {
				return validation.NewError("blog.site.build.output_dir_unsafe", "output directory must not be the working or root directory")
			}
			return nil
		})),
		validation.Field(&cmd.IDs, validation.Each(validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("blog.site.build.id_blank", "ids must not contain blank values")
			}
			return nil
		}))),
	)
}

// ToggleCategoryCommand flips the expanded state of one category node.
type ToggleCategoryCommand struct {
	Path string `json:"path"`
}

// Type implements command.Message.
func (ToggleCategoryCommand) Type() string { return toggleCategoryMessageType }

// Validate ensures a category path is present.
func (cmd ToggleCategoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Path, validation.Required, validation.By(func(value any) error {
			if strings.Trim(strings.TrimSpace(value.(string)), "/") == "" {
				return validation.NewError("blog.site.toggle_category.path_required", "category path is required")
			}
			return nil
		})),
	)
}
