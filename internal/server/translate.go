package server

import (
	"context"
	"strings"

	"github.com/conneroisu/docmux/internal/logging"
	"github.com/conneroisu/docmux/internal/routes"
)

// Translator maps request paths to filesystem paths using the current route
// table.
type Translator struct {
	Store       routes.Store
	DefaultRoot string
	Logger      logging.Logger
}

// Translate returns the filesystem path for requestPath. The route table is
// read on every call. A table that cannot be read is treated as empty.
func (t *Translator) Translate(requestPath string) string {
	var table routes.Table
	if t.Store != nil {
		current, err := t.Store.Current()
		if err != nil {
			if t.Logger != nil {
				t.Logger.Warn(context.Background(), err, "Route table unavailable, serving home site")
			}
		} else {
			table = current
		}
	}

	return TranslateWith(table, t.DefaultRoot, requestPath)
}

// TranslateWith is Translate against a fixed table.
func TranslateWith(table routes.Table, defaultRoot, requestPath string) string {
	path := requestPath
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}

	location := defaultRoot

	if path != "" && path != "/" {
		if route, ok := table.Match(path); ok {
			location = route.Dir
			path = path[len(route.Prefix):]
		}
	}

	if strings.HasSuffix(location, "/") || path == "" || strings.HasPrefix(path, "/") {
		return location + path
	}

	return location + "/" + path
}
