package scaffolding

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/docmux/internal/builder"
	"github.com/conneroisu/docmux/internal/errors"
	"github.com/conneroisu/docmux/internal/index"
	"github.com/conneroisu/docmux/internal/prompt"
)

type recordingRunner struct {
	calls []builder.Command
	err   error
}

func (r *recordingRunner) Run(ctx context.Context, c builder.Command) error {
	r.calls = append(r.calls, c)
	return r.err
}

func TestDefaultTitle(t *testing.T) {
	assert.Equal(t, "Mydocs - Home Documentation", DefaultTitle("mydocs"))
	assert.Equal(t, "Team-Docs - Home Documentation", DefaultTitle("team-docs"))
}

func TestInit(t *testing.T) {
	work := t.TempDir()
	runner := &recordingRunner{}
	confirmer := &prompt.Recorder{}
	g := &Generator{WorkDir: work, Runner: runner, Confirmer: confirmer}

	result, err := g.Init(context.Background(), "mydocs")
	require.NoError(t, err)

	dir := filepath.Join(work, "mydocs")
	assert.Equal(t, dir, result.Dir)
	assert.Equal(t, "Mydocs - Home Documentation", result.Title)
	assert.Equal(t, []string{IndexFile, HelpFile, SphinxHelpFile, MkDocsFile}, result.Files)
	assert.NoError(t, result.HomeBuildErr)
	assert.Equal(t, []string{titleQuestion, exampleQuestion}, confirmer.Questions)
	assert.False(t, result.Example)
	assert.Nil(t, result.ExampleBuild)
	assert.NoDirExists(t, filepath.Join(dir, ExampleProject))

	mkdocs, err := os.ReadFile(filepath.Join(dir, MkDocsFile))
	require.NoError(t, err)
	firstLine := strings.SplitN(string(mkdocs), "\n", 2)[0]
	assert.Equal(t, "site_name: Mydocs - Home Documentation", firstLine)

	var cfg MkDocsConfig
	require.NoError(t, yaml.Unmarshal(mkdocs, &cfg))
	assert.Equal(t, "Mydocs - Home Documentation", cfg.SiteName)

	assert.FileExists(t, filepath.Join(dir, "docs", "help", "How_To_Use.md"))
	assert.FileExists(t, filepath.Join(dir, "docs", "help", "Writing_Sphinx_Documentation.md"))
	assert.Len(t, cfg.Nav, 3)

	projects, err := index.LoadListedProjects(filepath.Join(dir, "docs", "index.md"), "")
	require.NoError(t, err)
	assert.Empty(t, projects)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, dir, runner.calls[0].Dir)
	assert.Equal(t, "mkdocs build", runner.calls[0].Line)
}

func TestInit_CustomTitle(t *testing.T) {
	work := t.TempDir()
	g := &Generator{WorkDir: work, Confirmer: prompt.Static{Text: "Our Docs"}}

	result, err := g.Init(context.Background(), "docs")
	require.NoError(t, err)
	assert.Equal(t, "Our Docs", result.Title)

	page, err := os.ReadFile(filepath.Join(work, "docs", "docs", "index.md"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(page), "# Our Docs\n"))
	assert.Contains(t, string(page), "# Projects")
}

func TestInit_HomeBuildFailureIsWarning(t *testing.T) {
	work := t.TempDir()
	runner := &recordingRunner{err: stderrors.New("mkdocs: command not found")}
	g := &Generator{WorkDir: work, Runner: runner}

	result, err := g.Init(context.Background(), "mydocs")
	require.NoError(t, err)
	assert.Error(t, result.HomeBuildErr)
	assert.DirExists(t, filepath.Join(work, "mydocs", "docs"))
}

func TestInit_Invalid(t *testing.T) {
	work := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(work, "taken"), 0o755))
	g := &Generator{WorkDir: work}

	tests := []struct {
		name string
		code string
	}{
		{"", "INVALID_NAME"},
		{"a/b", "INVALID_NAME"},
		{"taken", "HOME_EXISTS"},
	}

	for _, tt := range tests {
		t.Run(tt.code+"/"+tt.name, func(t *testing.T) {
			_, err := g.Init(context.Background(), tt.name)
			require.Error(t, err)
			assert.Equal(t, errors.ErrorTypeValidation, errors.GetErrorType(err))

			var de *errors.DocmuxError
			require.True(t, stderrors.As(err, &de))
			assert.Equal(t, tt.code, de.Code)
		})
	}

	_, err := os.Stat(filepath.Join(work, "a"))
	assert.True(t, os.IsNotExist(err))
}

func TestInit_PromptAborted(t *testing.T) {
	work := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := &Generator{WorkDir: work}
	_, err := g.Init(ctx, "mydocs")
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(work, "mydocs"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestInit_ExampleProject(t *testing.T) {
	work := t.TempDir()
	runner := &recordingRunner{}
	g := &Generator{WorkDir: work, Runner: runner, Confirmer: prompt.Static{Answer: true}}

	result, err := g.Init(context.Background(), "mydocs")
	require.NoError(t, err)

	dir := filepath.Join(work, "mydocs")
	project := filepath.Join(dir, ExampleProject)
	assert.True(t, result.Example)
	assert.FileExists(t, filepath.Join(project, "Makefile"))
	assert.FileExists(t, filepath.Join(project, "source", "conf.py"))
	assert.FileExists(t, filepath.Join(project, "source", "index.rst"))
	assert.FileExists(t, filepath.Join(project, "classif", "models.py"))
	assert.DirExists(t, filepath.Join(project, "source", "_static"))
	assert.Contains(t, result.Files, ExampleProject+"/Makefile")

	makefile, err := os.ReadFile(filepath.Join(project, "Makefile"))
	require.NoError(t, err)
	assert.Contains(t, string(makefile), "\t@$(SPHINXBUILD) -M $@")

	projects, err := index.LoadListedProjects(filepath.Join(dir, "docs", "index.md"), "")
	require.NoError(t, err)
	assert.Equal(t, []string{ExampleProject}, projects)

	require.NotNil(t, result.ExampleBuild)
	assert.Equal(t, []string{ExampleProject}, result.ExampleBuild.Built)
	assert.False(t, result.ExampleBuild.Failed())

	lines := make([]string, 0, len(runner.calls))
	for _, c := range runner.calls {
		lines = append(lines, filepath.Base(c.Dir)+":"+c.Line)
	}
	assert.Equal(t, []string{
		"mydocs:mkdocs build",
		"example_project:make clean",
		"example_project:make html",
		"mydocs:mkdocs build",
	}, lines)
}

func TestInit_ExampleProjectWithoutRunner(t *testing.T) {
	work := t.TempDir()
	g := &Generator{WorkDir: work, Confirmer: prompt.Static{Answer: true}}

	result, err := g.Init(context.Background(), "mydocs")
	require.NoError(t, err)
	assert.True(t, result.Example)
	assert.Nil(t, result.ExampleBuild)
	assert.DirExists(t, filepath.Join(work, "mydocs", ExampleProject, "source"))
}
