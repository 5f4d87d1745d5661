package builder

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/conneroisu/docmux/internal/errors"
)

// DefaultMarkers identify a project directory.
var DefaultMarkers = []string{"__project__", "source"}

// Discover lists the immediate subdirectories of workDir that contain at
// least one marker entry, sorted by name.
func Discover(workDir string, markers []string) ([]string, error) {
	if len(markers) == 0 {
		markers = DefaultMarkers
	}

	entries, err := os.ReadDir(workDir)
	if err != nil {
		return nil, errors.WrapIO(err, workDir, "failed to list projects")
	}

	projects := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		for _, marker := range markers {
			if _, err := os.Stat(filepath.Join(workDir, entry.Name(), marker)); err == nil {
				projects = append(projects, entry.Name())
				break
			}
		}
	}

	sort.Strings(projects)

	return projects, nil
}
