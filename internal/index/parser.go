// Package index reads the set of listed projects out of the home site's
// index document.
//
// The Projects section starts at the first line containing the section
// marker (by default "# Projects") and holds one link entry per line:
//
//	* [Foo](/foo/) - Foo's documentation
//
// The section ends at the first line starting with "#" seen after at least
// one project was captured. A heading that appears before any entry does not
// close the section, so free-form "#" lines can precede the list.
package index

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/conneroisu/docmux/internal/errors"
)

// DefaultMarker is the substring that opens the Projects section.
const DefaultMarker = "# Projects"

const (
	linkOpen    = "]("
	linkClose   = ")"
	headingMark = "#"
)

// ParseListedProjects returns the distinct project identifiers listed in the
// Projects section of r, in first-seen order. A document without the section
// or without entries yields an empty slice and no error.
func ParseListedProjects(r io.Reader, marker string) ([]string, error) {
	if marker == "" {
		marker = DefaultMarker
	}

	reader := bufio.NewReader(r)

	var projects []string
	seen := make(map[string]struct{})
	inSection := false

	for {
		line, readErr := reader.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, errors.NewIOError("INDEX_READ", "failed to read index document", readErr)
		}
		if readErr == io.EOF && line == "" {
			break
		}
		line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")

		if strings.Contains(line, marker) {
			inSection = true
		}

		if inSection {
			if project, ok := extractProject(line); ok {
				if _, dup := seen[project]; !dup {
					seen[project] = struct{}{}
					projects = append(projects, project)
				}
			}
		}

		if len(projects) > 0 && strings.HasPrefix(line, headingMark) {
			return projects, nil
		}

		if readErr == io.EOF {
			break
		}
	}

	if projects == nil {
		projects = []string{}
	}

	return projects, nil
}

// LoadListedProjects parses the index document at path. A missing document is
// reported as a NotFound error.
func LoadListedProjects(path, marker string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO(err, path, "failed to open index document")
	}
	defer f.Close()

	return ParseListedProjects(f, marker)
}

// extractProject pulls the link target out of a "[label](/target/)" entry.
// The opening "](" must not start the line, and the target ends at the first
// ")" after it. Surrounding slashes are trimmed so "/foo/" becomes "foo".
func extractProject(line string) (string, bool) {
	start := strings.Index(line, linkOpen)
	if start <= 0 {
		return "", false
	}

	rest := line[start+len(linkOpen):]
	end := strings.Index(rest, linkClose)
	if end < 0 {
		return "", false
	}

	project := strings.Trim(strings.TrimSpace(rest[:end]), "/")
	if project == "" {
		return "", false
	}

	return project, true
}
