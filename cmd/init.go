package cmd

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/conneroisu/docmux/internal/builder"
	"github.com/conneroisu/docmux/internal/prompt"
	"github.com/conneroisu/docmux/internal/scaffolding"
)

var initCmd = &cobra.Command{
	Use:   "init NAME",
	Short: "Create a new home documentation directory",
	Long: `Create NAME/ with an index document listing the projects, help pages
and mkdocs.yml, then build the home site once. An example Sphinx project
can be added and built as a showcase.

Examples:
  docmux init MyDocs               # Create ./MyDocs`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	runner := &builder.ExecRunner{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()}
	return a.scaffold(cmd.Context(), args[0], prompt.Default(), runner)
}

func (a *app) scaffold(ctx context.Context, name string, confirmer prompt.Confirmer, runner builder.Runner) error {
	gen := &scaffolding.Generator{
		WorkDir:         a.cfg.WorkDir,
		HomeCommand:     a.cfg.Home.Command,
		ProjectCommands: a.cfg.Projects.Commands,
		Marker:          a.cfg.Home.Marker,
		Confirmer:       confirmer,
		Runner:          runner,
		Logger:          a.logger,
	}

	result, err := gen.Init(ctx, name)
	if err != nil {
		return err
	}

	a.out.Success("Created %s (%s)", result.Dir, result.Title)
	for _, f := range result.Files {
		a.out.Plain("  %s", filepath.Join(name, filepath.FromSlash(f)))
	}

	if result.HomeBuildErr != nil {
		a.out.Warning("The home site was not built: %v", result.HomeBuildErr)
	}

	if result.Example {
		a.out.Info("%s created as a showcase of how docmux works", filepath.Join(name, scaffolding.ExampleProject))
		if b := result.ExampleBuild; b != nil && b.Failed() {
			a.out.Warning("The example project was not built: %v", b.Failures[0].Err)
		}
	}

	a.out.Header("Next steps")
	a.out.Plain("  cd %s", name)
	a.out.Plain("  docmux build --all")
	a.out.Plain("  docmux serve")

	return nil
}
