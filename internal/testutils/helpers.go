// Package testutils lays out home documentation directories for tests.
package testutils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Marker kinds understood by project discovery.
const (
	SourceDirMarker   = "source"
	ProjectFileMarker = "__project__"
)

// CreateTempHome creates an empty home directory with a docs/ folder.
func CreateTempHome(t *testing.T) string {
	t.Helper()

	root := filepath.Join(t.TempDir(), "home")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0o755))

	return root
}

// WriteFile writes content to root/rel, creating parent directories.
func WriteFile(t *testing.T, root, rel, content string) string {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

// CreateProject creates root/name marked as a project. An empty marker
// creates a plain directory that discovery skips.
func CreateProject(t *testing.T, root, name, marker string) string {
	t.Helper()

	dir := filepath.Join(root, name)
	switch marker {
	case "":
		require.NoError(t, os.MkdirAll(dir, 0o755))
	case SourceDirMarker:
		require.NoError(t, os.MkdirAll(filepath.Join(dir, SourceDirMarker), 0o755))
	default:
		WriteFile(t, dir, marker, "")
	}

	return dir
}

// IndexDocument renders an index document listing projects under marker.
func IndexDocument(marker string, projects ...string) string {
	var b strings.Builder
	b.WriteString("# Home\n\nWelcome.\n\n")
	b.WriteString(marker + "\n\n")
	for _, p := range projects {
		fmt.Fprintf(&b, "* [%s](/%s/) - %s's documentation\n", p, p, p)
	}

	return b.String()
}

// WriteIndex writes docs/index.md listing projects under "# Projects" and
// returns its path.
func WriteIndex(t *testing.T, root string, projects ...string) string {
	t.Helper()
	return WriteFile(t, root, "docs/index.md", IndexDocument("# Projects", projects...))
}

// WriteBuildPage writes a page into the project's build/html output.
func WriteBuildPage(t *testing.T, root, project, page, content string) string {
	t.Helper()
	return WriteFile(t, root, filepath.ToSlash(filepath.Join(project, "build", "html", page)), content)
}
