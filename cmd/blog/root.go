package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-blog"
	sitecmd "github.com/goliatone/go-blog/internal/commands/site"
	"github.com/goliatone/go-blog/internal/generator"
)

type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     blog.Config
	options []blog.Option
}

func newRootCommand(opts ...blog.Option) *cobra.Command {
	a := &app{v: viper.New(), options: opts}

	root := &cobra.Command{
		Use:           "blog",
		Short:         "Build and inspect a markdown blog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(a.v, a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./blog.yaml)")
	flags.String("content-dir", "", "directory holding the markdown posts")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error")
	flags.String("log-format", "", "log format: console, pretty, json")
	_ = a.v.BindPFlag("content.dir", flags.Lookup("content-dir"))
	_ = a.v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("logging.format", flags.Lookup("log-format"))

	root.AddCommand(
		a.buildCommand(),
		a.previewCommand(),
		a.treeCommand(),
		a.idsCommand(),
	)
	return root
}

func (a *app) module(ctx context.Context) (*blog.Module, error) {
	module, err := blog.New(a.cfg, a.options...)
	if err != nil {
		return nil, err
	}
	if err := module.Load(ctx); err != nil {
		return nil, err
	}
	return module, nil
}

func (a *app) buildCommand() *cobra.Command {
	var (
		out    string
		dryRun bool
		ids    []string
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render every post plus sitemap, feed and data files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			module, err := a.module(ctx)
			if err != nil {
				return err
			}

			var result *generator.BuildResult
			err = module.Commands().Build.Execute(ctx, sitecmd.BuildSiteCommand{
				OutputDir: out,
				IDs:       ids,
				DryRun:    dryRun,
				ResultCallback: func(res *generator.BuildResult) {
					result = res
				},
			})
			if result != nil {
				printBuildResult(cmd.OutOrStdout(), result)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output directory (overrides generator.output_dir)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute the build without writing files")
	cmd.Flags().StringSliceVar(&ids, "id", nil, "only render the listed post ids")
	return cmd
}

func printBuildResult(w io.Writer, result *generator.BuildResult) {
	mode := "wrote"
	if result.DryRun {
		mode = "would write"
	}
	fmt.Fprintf(w, "%s %d artifacts (%d pages) to %s in %s\n",
		mode, len(result.Artifacts), result.PagesBuilt, result.OutputDir, result.Duration.Round(time.Millisecond))
	for _, err := range result.Errors {
		fmt.Fprintf(w, "  error: %v\n", err)
	}
}

func (a *app) previewCommand() *cobra.Command {
	var showTOC bool
	cmd := &cobra.Command{
		Use:   "preview <id>",
		Short: "Print the rendered HTML of one post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			module, err := a.module(ctx)
			if err != nil {
				return err
			}
			defer module.ClosePreview()

			id := strings.TrimSpace(args[0])
			var html string
			upgrade, err := module.Preview(ctx, id, func(markup string) { html = markup })
			if err != nil {
				return err
			}
			if upgrade != nil {
				if _, err := upgrade.Wait(); err != nil {
					return err
				}
			}

			w := cmd.OutOrStdout()
			if showTOC {
				rendered, err := module.Rendered(ctx, id)
				if err != nil {
					return err
				}
				printTOC(w, rendered.TOC, 0)
				fmt.Fprintln(w)
			}
			fmt.Fprintln(w, html)
			return nil
		},
	}
	cmd.Flags().BoolVar(&showTOC, "toc", false, "print the table of contents before the HTML")
	return cmd
}

func printTOC(w io.Writer, items []blog.TOCItem, depth int) {
	for _, item := range items {
		fmt.Fprintf(w, "%s- %s (#%s)\n", strings.Repeat("  ", depth), item.Text, item.ID)
		printTOC(w, item.Children, depth+1)
	}
}

func (a *app) treeCommand() *cobra.Command {
	var expand []string
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the category tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			module, err := a.module(ctx)
			if err != nil {
				return err
			}
			for _, path := range expand {
				err := module.Commands().Toggle.Execute(ctx, sitecmd.ToggleCategoryCommand{Path: path})
				if err != nil {
					return err
				}
			}
			printTree(cmd.OutOrStdout(), module.Categories(), 0)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&expand, "toggle", nil, "toggle the listed category paths before printing")
	return cmd
}

func printTree(w io.Writer, nodes []*blog.BlogCategory, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, node := range nodes {
		marker := "+"
		if node.Expanded {
			marker = "-"
		}
		fmt.Fprintf(w, "%s%s %s (%d)\n", indent, marker, node.Name, len(node.Blogs))
		if !node.Expanded {
			continue
		}
		printTree(w, node.Children, depth+1)
		for _, item := range node.Blogs {
			fmt.Fprintf(w, "%s  * %s [%s]\n", indent, item.Title, item.ID)
		}
	}
}

func (a *app) idsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ids",
		Short: "List post ids with their source paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			module, err := a.module(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tPATH\tDATE\tTITLE")
			for _, item := range module.List() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", item.ID, item.Path, item.Date, item.Title)
			}
			return tw.Flush()
		},
	}
}
