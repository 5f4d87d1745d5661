package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/docmux/internal/builder"
	"github.com/conneroisu/docmux/internal/errors"
	"github.com/conneroisu/docmux/internal/prompt"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build documentation projects and the home site",
	Long: `Build the selected documentation projects with the configured project
commands, link each project's entry page back to the home site, then build
the home site once.

Examples:
  docmux build --all                   # Build every discovered project
  docmux build --projects foo bar      # Build foo and bar
  docmux build --all --force           # Do not ask for confirmation
  docmux build --all --only-index      # Only projects listed in the index
  docmux build --all --offline         # Strip remote fonts from the home site`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

var (
	buildAll       bool
	buildProjects  []string
	buildForce     bool
	buildOnlyIndex bool
	buildVerbose   bool
)

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().BoolVarP(&buildAll, "all", "a", false, "Build all discovered projects")
	buildCmd.Flags().StringSliceVarP(&buildProjects, "projects", "p", nil, "Projects to build")
	buildCmd.Flags().BoolVarP(&buildForce, "force", "F", false, "Build without asking for confirmation")
	buildCmd.Flags().BoolVarP(&buildOnlyIndex, "only-index", "o", false, "Only build projects listed in the index document")
	buildCmd.Flags().BoolVarP(&buildVerbose, "verbose", "v", false, "Show generator output and progress")
	buildCmd.Flags().Bool("offline", false, "Strip remote font references after building the home site")
}

func runBuild(cmd *cobra.Command, _ []string) error {
	if err := bindFlags(cmd, map[string]string{"offline": "offline"}); err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	req := builder.Request{
		Projects:   buildProjects,
		All:        buildAll,
		Force:      buildForce,
		OnlyListed: buildOnlyIndex,
		Verbose:    buildVerbose,
	}

	return errors.SuggestPath(a.suggestionContext("build"), func() error {
		return a.build(cmd.Context(), cmd, req, prompt.Default())
	})
}

func (a *app) build(ctx context.Context, cmd *cobra.Command, req builder.Request, confirmer prompt.Confirmer) error {
	if err := req.Validate(); err != nil {
		return selectionError(err)
	}

	// The watcher of a running serve reads this flag.
	if err := a.state.SetOffline(a.cfg.Offline); err != nil {
		a.logger.Warn(ctx, err, "Failed to persist offline flag")
	}

	result, err := a.driver(cmd, confirmer).Build(ctx, req)
	if err != nil {
		if errors.IsConfigError(err) {
			return selectionError(err)
		}
		return err
	}

	if result.Aborted {
		a.out.Warning("Build aborted")
		return nil
	}

	for _, name := range result.Missing {
		a.out.Warning("Project %s not found", name)
	}

	homeFailed := false
	for _, f := range result.Failures {
		if f.Project == "" {
			homeFailed = true
		}
	}
	if a.cfg.Offline && !homeFailed {
		a.stripFonts(ctx)
	}

	if result.Failed() {
		for _, f := range result.Failures {
			target := f.Project
			if target == "" {
				target = "home"
			}
			a.errOut.Fail("%s: %s: %v", target, f.Command, f.Err)
		}
		return errors.NewBuildError("BUILD_FAILED",
			fmt.Sprintf("%d build step(s) failed", len(result.Failures)), nil)
	}

	if len(result.Built) == 0 {
		a.out.Info("No project built, home site rebuilt in %s", result.Duration.Round(time.Millisecond))
		return nil
	}

	a.out.Success("Built %s in %s", strings.Join(result.Built, ", "), result.Duration.Round(time.Millisecond))
	return nil
}

func selectionError(err error) error {
	return errors.NewEnhancedError(err.Error(), err, []errors.ErrorSuggestion{{
		Title:       "Select projects explicitly",
		Description: "Use either --all or --projects, not both",
		Command:     "docmux build --projects foo bar",
	}})
}
