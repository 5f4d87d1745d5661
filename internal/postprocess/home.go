// Package postprocess edits generated HTML in place after the external
// generators have run.
package postprocess

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/conneroisu/docmux/internal/errors"
)

const (
	// DefaultHTMLEntry is the project entry page relative to the project.
	DefaultHTMLEntry = "build/html/index.html"

	// SourceLinkMarker identifies the "view source" link in a generated
	// entry page.
	SourceLinkMarker = `<a href="_sources/index.rst.txt" `

	// HomeLink replaces the source link.
	HomeLink = `<h3><a href="/"> Documentation's Home</a></h3>`
)

// OverwriteHome replaces the last line of root/project/htmlEntry that contains
// SourceLinkMarker with HomeLink. Earlier occurrences are left alone. A
// missing entry page, or one without the marker, is not an error and is not
// rewritten.
func OverwriteHome(root, project, htmlEntry string) (bool, error) {
	if htmlEntry == "" {
		htmlEntry = DefaultHTMLEntry
	}

	path := filepath.Join(root, project, filepath.FromSlash(htmlEntry))

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.WrapIO(err, path, "failed to stat entry page")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, errors.WrapIO(err, path, "failed to read entry page")
	}

	out, changed := ReplaceLastLine(data, []byte(SourceLinkMarker), []byte(HomeLink))
	if !changed {
		return false, nil
	}

	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return false, errors.WrapIO(err, path, "failed to write entry page")
	}

	return true, nil
}

// ReplaceLastLine swaps the last line of data containing marker for
// replacement, keeping that line's terminator.
func ReplaceLastLine(data, marker, replacement []byte) ([]byte, bool) {
	idx := bytes.LastIndex(data, marker)
	if idx < 0 {
		return data, false
	}

	start := bytes.LastIndexByte(data[:idx], '\n') + 1

	end := len(data)
	if nl := bytes.IndexByte(data[idx:], '\n'); nl >= 0 {
		end = idx + nl
		if end > start && data[end-1] == '\r' {
			end--
		}
	}

	out := make([]byte, 0, len(data)-(end-start)+len(replacement))
	out = append(out, data[:start]...)
	out = append(out, replacement...)
	out = append(out, data[end:]...)

	return out, true
}
