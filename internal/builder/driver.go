// Package builder reconciles the set of requested projects with what exists
// on disk and runs the external generators for them.
package builder

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/conneroisu/docmux/internal/errors"
	"github.com/conneroisu/docmux/internal/index"
	"github.com/conneroisu/docmux/internal/logging"
	"github.com/conneroisu/docmux/internal/postprocess"
	"github.com/conneroisu/docmux/internal/prompt"
	"github.com/conneroisu/docmux/internal/ux"
)

var (
	// ErrConflictingSelection is returned when both All and Projects are set.
	ErrConflictingSelection = errors.NewConfigError("CONFLICTING_SELECTION", "can't use both the projects and all flags")

	// ErrNoSelection is returned when neither All nor Projects is set.
	ErrNoSelection = errors.NewConfigError("NO_SELECTION", "you have to specify at least one project (or all)")
)

// Request selects what to build.
type Request struct {
	Projects   []string
	All        bool
	Force      bool
	OnlyListed bool
	Verbose    bool
}

// Failure records a command that did not succeed. An empty Project means the
// home generator.
type Failure struct {
	Project string
	Command string
	Err     error
}

// Result describes one build run.
type Result struct {
	RunID    string
	Selected []string
	Missing  []string
	Built    []string
	Failures []Failure
	Aborted  bool
	Duration time.Duration
}

// Failed reports whether any command failed.
func (r *Result) Failed() bool {
	return len(r.Failures) > 0
}

// Config is the build layout of the home documentation directory.
type Config struct {
	WorkDir     string
	Markers     []string
	Commands    []string
	HTMLEntry   string
	HomeCommand string
	IndexPath   string
	IndexMarker string
}

// Driver runs builds. Builds are sequential.
type Driver struct {
	cfg       Config
	runner    Runner
	confirmer prompt.Confirmer
	printer   *ux.Printer
	logger    logging.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithRunner replaces the subprocess runner.
func WithRunner(r Runner) Option {
	return func(d *Driver) { d.runner = r }
}

// WithConfirmer sets who approves non-forced builds.
func WithConfirmer(c prompt.Confirmer) Option {
	return func(d *Driver) { d.confirmer = c }
}

// WithOutput sets where progress lines go.
func WithOutput(w io.Writer) Option {
	return func(d *Driver) { d.printer = ux.NewPrinter(w) }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// New creates a driver for cfg.
func New(cfg Config, opts ...Option) *Driver {
	if len(cfg.Markers) == 0 {
		cfg.Markers = DefaultMarkers
	}
	if len(cfg.Commands) == 0 {
		cfg.Commands = []string{"make clean", "make html"}
	}
	if cfg.HTMLEntry == "" {
		cfg.HTMLEntry = postprocess.DefaultHTMLEntry
	}
	if cfg.HomeCommand == "" {
		cfg.HomeCommand = "mkdocs build"
	}
	if cfg.IndexPath == "" {
		cfg.IndexPath = filepath.Join(cfg.WorkDir, "docs", "index.md")
	}
	if cfg.IndexMarker == "" {
		cfg.IndexMarker = index.DefaultMarker
	}

	d := &Driver{
		cfg:       cfg,
		runner:    &ExecRunner{},
		confirmer: prompt.Static{Answer: false},
		printer:   ux.NewPrinter(io.Discard),
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if er, ok := d.runner.(*ExecRunner); ok && er.Stdout == nil {
		er.Stdout = d.printer.Writer()
		er.Stderr = d.printer.Writer()
	}
	d.logger = d.logger.WithComponent("builder")

	return d
}

// Validate checks the selection without touching the filesystem.
func (r Request) Validate() error {
	if r.All && len(r.Projects) > 0 {
		return ErrConflictingSelection
	}
	if !r.All && len(r.Projects) == 0 {
		return ErrNoSelection
	}
	return nil
}

// Build validates the selection, asks for confirmation unless forced, then
// builds every selected project followed by the home site.
func (d *Driver) Build(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result := &Result{RunID: uuid.New().String()}
	logger := d.logger.With("run_id", result.RunID)
	perf := logging.StartOperation(logger, "build")
	start := time.Now()

	discovered, err := Discover(d.cfg.WorkDir, d.cfg.Markers)
	if err != nil {
		perf.EndWithError(ctx, err)
		return nil, err
	}

	result.Selected, result.Missing = selectProjects(discovered, req)
	for _, name := range result.Missing {
		logger.Warn(ctx, nil, "Requested project not found", "project", name)
	}

	if !req.Force {
		ok, err := d.confirmer.Confirm(ctx, confirmQuestion(req, result.Selected))
		if err != nil {
			perf.EndWithError(ctx, err)
			return nil, err
		}
		if !ok {
			result.Aborted = true
			logger.Info(ctx, "Build declined")
			return result, nil
		}
	}

	if req.OnlyListed {
		listed, err := index.LoadListedProjects(d.cfg.IndexPath, d.cfg.IndexMarker)
		if err != nil {
			perf.EndWithError(ctx, err)
			return nil, err
		}
		result.Selected = intersect(result.Selected, listed)
	}

	for _, project := range result.Selected {
		if err := ctx.Err(); err != nil {
			perf.EndWithError(ctx, err)
			return result, err
		}

		if d.buildProject(ctx, logger, project, req.Verbose, result) {
			result.Built = append(result.Built, project)
		}

		if req.Verbose {
			d.printer.Plain("\n>>>>>> Done %s\n", project)
		}
	}

	if err := d.buildHome(ctx, req.Verbose); err != nil {
		result.Failures = append(result.Failures, Failure{Command: d.cfg.HomeCommand, Err: err})
		logger.Error(ctx, err, "Home build failed")
	}

	if req.Verbose {
		d.printer.Success(">>>>>> Build Complete.")
	}

	result.Duration = time.Since(start)
	perf.End(ctx)

	return result, nil
}

// buildProject stops at the first failing command but still links the entry
// page, since generators often write output before exiting non-zero.
func (d *Driver) buildProject(ctx context.Context, logger logging.Logger, project string, verbose bool, result *Result) bool {
	dir := filepath.Join(d.cfg.WorkDir, project)
	ok := true

	for _, line := range d.cfg.Commands {
		err := d.runner.Run(ctx, Command{Dir: dir, Line: line, Verbose: verbose})
		if err != nil {
			result.Failures = append(result.Failures, Failure{Project: project, Command: line, Err: err})
			logger.Error(ctx, err, "Project command failed", "project", project, "command", line)
			ok = false
			break
		}
	}

	if _, err := postprocess.OverwriteHome(d.cfg.WorkDir, project, d.cfg.HTMLEntry); err != nil {
		result.Failures = append(result.Failures, Failure{Project: project, Command: "overwrite home link", Err: err})
		logger.Error(ctx, err, "Failed to link project home", "project", project)
		return false
	}

	if ok {
		logger.Debug(ctx, "Project built", "project", project)
	}

	return ok
}

// BuildHome runs the home generator once, quietly.
func (d *Driver) BuildHome(ctx context.Context) error {
	return d.buildHome(ctx, false)
}

func (d *Driver) buildHome(ctx context.Context, verbose bool) error {
	return d.runner.Run(ctx, Command{Dir: d.cfg.WorkDir, Line: d.cfg.HomeCommand, Verbose: verbose})
}

func selectProjects(discovered []string, req Request) (selected, missing []string) {
	if req.All {
		return append([]string{}, discovered...), nil
	}

	requested := make(map[string]struct{}, len(req.Projects))
	for _, p := range req.Projects {
		requested[p] = struct{}{}
	}

	selected = make([]string, 0, len(req.Projects))
	found := make(map[string]struct{}, len(discovered))
	for _, p := range discovered {
		if _, ok := requested[p]; ok {
			selected = append(selected, p)
			found[p] = struct{}{}
		}
	}

	for _, p := range req.Projects {
		if _, ok := found[p]; !ok {
			missing = append(missing, p)
			found[p] = struct{}{}
		}
	}

	return selected, missing
}

func intersect(projects, listed []string) []string {
	keep := make(map[string]struct{}, len(listed))
	for _, p := range listed {
		keep[p] = struct{}{}
	}

	out := make([]string, 0, len(projects))
	for _, p := range projects {
		if _, ok := keep[p]; ok {
			out = append(out, p)
		}
	}

	return out
}

func confirmQuestion(req Request, selected []string) string {
	if req.All {
		return fmt.Sprintf("You're about to build the docs for ALL projects:\n- %s\nContinue?", strings.Join(selected, "\n- "))
	}
	return fmt.Sprintf("You are about to build the docs for:\n- %s\nContinue?", strings.Join(selected, "\n- "))
}
