// Package scaffolding creates a new home documentation directory.
package scaffolding

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/docmux/internal/builder"
	"github.com/conneroisu/docmux/internal/errors"
	"github.com/conneroisu/docmux/internal/index"
	"github.com/conneroisu/docmux/internal/logging"
	"github.com/conneroisu/docmux/internal/prompt"
	"github.com/conneroisu/docmux/internal/validation"
)

// Files created inside the new home, relative to it.
const (
	IndexFile       = "docs/index.md"
	HelpFile        = "docs/help/How_To_Use.md"
	SphinxHelpFile  = "docs/help/Writing_Sphinx_Documentation.md"
	MkDocsFile      = "mkdocs.yml"
	defaultCmd      = "mkdocs build"
	titleQuestion   = "Name of your Home Documentation site"
	exampleQuestion = "Include example project showcasing Sphinx and autodocs?"
)

// MkDocsConfig is the generated mkdocs.yml. SiteName must stay the first
// field so it is written on the first line.
type MkDocsConfig struct {
	SiteName string              `yaml:"site_name"`
	Nav      []map[string]string `yaml:"nav"`
	Theme    string              `yaml:"theme"`
}

// Generator creates home directories under WorkDir.
type Generator struct {
	WorkDir         string
	HomeCommand     string
	ProjectCommands []string
	Marker          string
	Confirmer       prompt.Confirmer
	Runner          builder.Runner
	Logger          logging.Logger
}

// Result describes a created home.
type Result struct {
	Dir   string
	Title string
	Files []string
	// Example is set when the showcase project was added.
	Example bool
	// HomeBuildErr is set when the first home build failed. The home is
	// still usable.
	HomeBuildErr error
	// ExampleBuild is the forced build of the showcase project, nil when it
	// was not added or no runner is set.
	ExampleBuild *builder.Result
}

// DefaultTitle is the title offered for name.
func DefaultTitle(name string) string {
	return cases.Title(language.English).String(name) + " - Home Documentation"
}

// Init creates WorkDir/name with an index, help pages and mkdocs.yml, then
// runs the home generator once in it. When the operator accepts, a showcase
// Sphinx project is added and built.
func (g *Generator) Init(ctx context.Context, name string) (*Result, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, errors.NewValidationError("INVALID_NAME", "you should specify a valid project name").
			WithContext("reason", err.Error())
	}

	dir := filepath.Join(g.WorkDir, name)
	if _, err := os.Stat(dir); err == nil {
		return nil, errors.NewValidationError("HOME_EXISTS", "this project already exists").WithFile(dir)
	} else if !os.IsNotExist(err) {
		return nil, errors.WrapIO(err, dir, "failed to check home directory")
	}

	confirmer := g.Confirmer
	if confirmer == nil {
		confirmer = prompt.Static{}
	}

	title, err := confirmer.Input(ctx, titleQuestion, DefaultTitle(name))
	if err != nil {
		return nil, err
	}

	marker := g.Marker
	if marker == "" {
		marker = index.DefaultMarker
	}

	data := TemplateContext{Name: name, Title: title, Marker: marker}
	result := &Result{Dir: dir, Title: title}

	if err := os.MkdirAll(filepath.Join(dir, "docs", "help"), 0o755); err != nil {
		return nil, errors.WrapIO(err, dir, "failed to create home directory")
	}

	if err := g.writeHome(dir, data, result); err != nil {
		return nil, err
	}

	if g.Runner != nil {
		if err := g.Runner.Run(ctx, builder.Command{Dir: dir, Line: g.homeCommand()}); err != nil {
			result.HomeBuildErr = err
			g.warn(ctx, err, "Initial home build failed", "dir", dir)
		}
	}

	include, err := confirmer.Confirm(ctx, exampleQuestion)
	if err != nil {
		return nil, err
	}
	if !include {
		return result, nil
	}

	data.Example = true
	if err := g.writeExample(dir, data, result); err != nil {
		return nil, err
	}

	if g.Runner != nil {
		driver := builder.New(builder.Config{
			WorkDir:     dir,
			Commands:    g.ProjectCommands,
			HomeCommand: g.homeCommand(),
			IndexMarker: marker,
		}, builder.WithRunner(g.Runner), builder.WithLogger(g.logger()))

		built, err := driver.Build(ctx, builder.Request{Projects: []string{ExampleProject}, Force: true})
		if err != nil {
			return nil, err
		}
		result.ExampleBuild = built
		if built.Failed() {
			g.warn(ctx, built.Failures[0].Err, "Example project build failed", "project", ExampleProject)
		}
	}

	return result, nil
}

func (g *Generator) writeHome(dir string, data TemplateContext, result *Result) error {
	files := []struct {
		rel     string
		content string
	}{
		{IndexFile, indexTemplate},
		{HelpFile, helpTemplate},
		{SphinxHelpFile, sphinxHelpTemplate},
	}
	for _, f := range files {
		if err := g.generateFile(filepath.Join(dir, filepath.FromSlash(f.rel)), f.content, data); err != nil {
			return err
		}
		result.Files = append(result.Files, f.rel)
	}

	if err := writeMkDocs(filepath.Join(dir, MkDocsFile), data.Title); err != nil {
		return err
	}
	result.Files = append(result.Files, MkDocsFile)

	return nil
}

// writeExample adds the showcase project and lists it in the index.
func (g *Generator) writeExample(dir string, data TemplateContext, result *Result) error {
	project := filepath.Join(dir, ExampleProject)

	for _, sub := range []string{"classif", filepath.Join("source", "_static")} {
		if err := os.MkdirAll(filepath.Join(project, sub), 0o755); err != nil {
			return errors.WrapIO(err, project, "failed to create example project")
		}
	}

	for _, f := range exampleFiles {
		rel := ExampleProject + "/" + f.rel
		if err := g.generateFile(filepath.Join(dir, filepath.FromSlash(rel)), f.content, data); err != nil {
			return err
		}
		result.Files = append(result.Files, rel)
	}

	if err := g.generateFile(filepath.Join(dir, filepath.FromSlash(IndexFile)), indexTemplate, data); err != nil {
		return err
	}
	result.Example = true

	return nil
}

func (g *Generator) homeCommand() string {
	if g.HomeCommand == "" {
		return defaultCmd
	}
	return g.HomeCommand
}

func (g *Generator) logger() logging.Logger {
	if g.Logger == nil {
		return logging.Discard()
	}
	return g.Logger
}

func (g *Generator) warn(ctx context.Context, err error, msg string, fields ...interface{}) {
	if g.Logger != nil {
		g.Logger.Warn(ctx, err, msg, fields...)
	}
}

// generateFile renders a template into filename
func (g *Generator) generateFile(filename, content string, data TemplateContext) error {
	tmpl, err := template.New(filepath.Base(filename)).Parse(content)
	if err != nil {
		return errors.NewInternalError("TEMPLATE_PARSE", "failed to parse template", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return errors.NewInternalError("TEMPLATE_EXECUTE", "failed to execute template", err)
	}

	if err := os.WriteFile(filename, buf.Bytes(), 0o644); err != nil {
		return errors.WrapIO(err, filename, "failed to write file")
	}

	return nil
}

func writeMkDocs(path, title string) error {
	cfg := MkDocsConfig{
		SiteName: title,
		Nav: []map[string]string{
			{"Home": "index.md"},
			{"Help": "help/How_To_Use.md"},
			{"Writing Sphinx Documentation": "help/Writing_Sphinx_Documentation.md"},
		},
		Theme: "readthedocs",
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", MkDocsFile, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapIO(err, path, "failed to write mkdocs config")
	}

	return nil
}
