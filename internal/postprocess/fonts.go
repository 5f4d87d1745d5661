package postprocess

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/conneroisu/docmux/internal/errors"
)

// RemoteFontHosts are stripped from the home site in offline mode.
var RemoteFontHosts = []string{
	"fonts.googleapis.com",
	"fonts.gstatic.com",
}

// StripRemoteFonts removes every line referencing a remote font host from the
// HTML and CSS files under siteDir and returns the number of files changed.
// A missing siteDir is not an error.
func StripRemoteFonts(siteDir string) (int, error) {
	if _, err := os.Stat(siteDir); os.IsNotExist(err) {
		return 0, nil
	}

	changed := 0
	err := filepath.WalkDir(siteDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".html", ".htm", ".css":
		default:
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		out, removed := dropLinesContaining(data, RemoteFontHosts)
		if removed == 0 {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
			return err
		}
		changed++

		return nil
	})
	if err != nil {
		return changed, errors.WrapIO(err, siteDir, "failed to strip remote fonts")
	}

	return changed, nil
}

func dropLinesContaining(data []byte, needles []string) ([]byte, int) {
	lines := bytes.SplitAfter(data, []byte("\n"))
	out := make([]byte, 0, len(data))
	removed := 0

	for _, line := range lines {
		drop := false
		for _, needle := range needles {
			if bytes.Contains(line, []byte(needle)) {
				drop = true
				break
			}
		}
		if drop {
			removed++
			continue
		}
		out = append(out, line...)
	}

	return out, removed
}
