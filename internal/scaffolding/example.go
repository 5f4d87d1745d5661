package scaffolding

// ExampleProject is the directory of the showcase Sphinx project.
const ExampleProject = "example_project"

// exampleFiles are rendered under ExampleProject, keyed by slash path.
var exampleFiles = []struct {
	rel     string
	content string
}{
	{"Makefile", exampleMakefile},
	{"source/conf.py", exampleConf},
	{"source/index.rst", exampleIndex},
	{"source/classif.rst", exampleModulePage},
	{"classif/__init__.py", ""},
	{"classif/models.py", exampleModels},
}

const exampleMakefile = `# Minimal makefile for Sphinx documentation

SPHINXOPTS    =
SPHINXBUILD   = sphinx-build
SOURCEDIR     = source
BUILDDIR      = build

help:
	@$(SPHINXBUILD) -M help "$(SOURCEDIR)" "$(BUILDDIR)" $(SPHINXOPTS) $(O)

.PHONY: help Makefile

%: Makefile
	@$(SPHINXBUILD) -M $@ "$(SOURCEDIR)" "$(BUILDDIR)" $(SPHINXOPTS) $(O)
`

const exampleConf = `import os
import sys

sys.path.insert(0, os.path.abspath(".."))

project = "Example Project"
author = "{{.Title}}"

extensions = [
    "sphinx.ext.autodoc",
    "sphinx.ext.napoleon",
    "sphinx.ext.viewcode",
]

templates_path = ["_templates"]
source_suffix = ".rst"
master_doc = "index"
exclude_patterns = []

html_theme = "sphinx_rtd_theme"
html_static_path = ["_static"]
`

const exampleIndex = `Example Project
===============

This project shows how a Sphinx project lives next to the home site. It is
built with ` + "``docmux build --projects example_project``" + ` and served under
` + "``/example_project/``" + `.

.. toctree::
   :maxdepth: 2
   :caption: Contents:

   classif

Indices and tables
==================

* :ref:` + "`genindex`" + `
* :ref:` + "`modindex`" + `
* :ref:` + "`search`" + `
`

const exampleModulePage = `classif
=======

.. automodule:: classif.models
   :members:
   :undoc-members:
`

const exampleModels = `"""
Models of the ` + "``classif``" + ` package.
"""


class LogisticRegressor(object):
    """Logistic regression model.

    Args:
        weights (list, optional): Weights to start the training from.
    """

    def __init__(self, weights=None):
        self.weights = weights

    def train(self, x_train, y_train):
        """Fit the model.

        Args:
            x_train (list): Training data.
            y_train (list): Training labels.

        Returns:
            LogisticRegressor: The trained model.
        """
        return self

    def predict(self, x):
        """Predict labels for x.

        Args:
            x (list): Samples.

        Returns:
            list: One label per sample.
        """
        return [0 for _ in x]
`
