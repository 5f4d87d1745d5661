// Package routes builds and stores the route table that maps URL prefixes to
// project build directories.
package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/conneroisu/docmux/internal/errors"
	"github.com/conneroisu/docmux/internal/index"
)

// DefaultBuildSubdir is where a project's generator writes its HTML.
const DefaultBuildSubdir = "build/html"

// Route maps a URL prefix to an absolute directory.
type Route struct {
	Prefix string
	Dir    string
}

// MarshalJSON encodes a route as a [prefix, dir] pair.
func (r Route) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{r.Prefix, r.Dir})
}

// UnmarshalJSON decodes a [prefix, dir] pair. An empty pair decodes to the
// zero Route.
func (r *Route) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}

	switch len(pair) {
	case 0:
		*r = Route{}
	case 2:
		*r = Route{Prefix: pair[0], Dir: pair[1]}
	default:
		return fmt.Errorf("route must be a [prefix, dir] pair, got %d elements", len(pair))
	}

	return nil
}

// Table is an ordered route list. The first matching prefix wins.
type Table []Route

// MarshalJSON always encodes a nil table as an empty array.
func (t Table) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}

	return json.Marshal([]Route(t))
}

// UnmarshalJSON drops zero routes so the "[[]]" placeholder decodes to an
// empty table.
func (t *Table) UnmarshalJSON(data []byte) error {
	var raw []Route
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Table, 0, len(raw))
	for _, r := range raw {
		if r.Prefix == "" && r.Dir == "" {
			continue
		}
		out = append(out, r)
	}
	*t = out

	return nil
}

// Match returns the first route whose prefix starts path.
func (t Table) Match(path string) (Route, bool) {
	for _, r := range t {
		if r.Prefix != "" && strings.HasPrefix(path, r.Prefix) {
			return r, true
		}
	}

	return Route{}, false
}

// Build converts listed projects into a route table rooted at workDir. Input
// order is preserved.
func Build(projects []string, workDir, buildSubdir string) (Table, error) {
	if buildSubdir == "" {
		buildSubdir = DefaultBuildSubdir
	}

	absWorkDir, err := filepath.Abs(workDir)
	if err != nil {
		return nil, errors.NewIOError("ROUTES_WORKDIR", "failed to resolve working directory", err).WithFile(workDir)
	}

	table := make(Table, 0, len(projects))
	for _, p := range projects {
		prefix := p
		if !strings.HasPrefix(prefix, "/") {
			prefix = "/" + prefix
		}

		table = append(table, Route{
			Prefix: prefix,
			Dir:    filepath.Join(absWorkDir, filepath.FromSlash(strings.Trim(p, "/")), filepath.FromSlash(buildSubdir)),
		})
	}

	return table, nil
}

// Source describes where the listed projects come from and where their
// builds live.
type Source struct {
	IndexPath   string
	Marker      string
	WorkDir     string
	BuildSubdir string
}

// Refresh re-reads the index document and replaces the stored table
// wholesale. It returns the table it stored.
func Refresh(ctx context.Context, store Store, src Source) (Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	projects, err := index.LoadListedProjects(src.IndexPath, src.Marker)
	if err != nil {
		return nil, err
	}

	table, err := Build(projects, src.WorkDir, src.BuildSubdir)
	if err != nil {
		return nil, err
	}

	if err := store.Replace(table); err != nil {
		return nil, err
	}

	return table, nil
}
