package scaffolding

// TemplateContext is the data available to the home templates.
type TemplateContext struct {
	Name    string
	Title   string
	Marker  string
	Example bool
}

const indexTemplate = `# {{.Title}}

Welcome to the home of every documentation project kept in this directory.
Each project is built separately and served under its own path.

New here? Read the [help page](help/How_To_Use.md).

This page is generated with [MkDocs](https://www.mkdocs.org).
Edit ` + "`docs/index.md`" + ` to change it.

{{.Marker}}

<!-- One line per project, linking to /project_directory/ -->
{{- if .Example}}
* [Example Project](/example_project/) - Sphinx and autodoc showcase
{{- end}}
`

const helpTemplate = `# How to use {{.Name}}

## Add a project

1. Create a directory next to ` + "`docs/`" + ` and initialise Sphinx in it
   (` + "`sphinx-quickstart`" + ` with separate source and build directories).
2. List it in ` + "`docs/index.md`" + ` under the ` + "`{{.Marker}}`" + ` heading:

        * [My Project](/my_project/) - what it documents

3. Build it:

        docmux build --projects my_project

## Serve

Run ` + "`docmux serve`" + ` from this directory. Sources are watched: editing a
` + "`.md`" + ` file rebuilds this home, editing a ` + "`.rst`" + ` file rebuilds its project.
`

const sphinxHelpTemplate = `# Writing Sphinx documentation

A project is a Sphinx directory next to ` + "`docs/`" + `. Create one with
` + "`sphinx-quickstart`" + ` and answer yes to separate source and build directories.

## Layout

    my_project/
        Makefile
        source/
            conf.py
            index.rst
            _static/
        build/html/      generated

## Autodoc

Enable ` + "`sphinx.ext.autodoc`" + ` and ` + "`sphinx.ext.napoleon`" + ` in ` + "`source/conf.py`" + `,
put the package on ` + "`sys.path`" + `, then document a module with:

    .. automodule:: package.module
       :members:

## Link it from the home site

Add one line under ` + "`{{.Marker}}`" + ` in ` + "`docs/index.md`" + `:

    * [My Project](/my_project/) - what it documents

Every ` + "`.rst`" + ` change under ` + "`source/`" + ` rebuilds the project while
` + "`docmux serve`" + ` runs.
`
