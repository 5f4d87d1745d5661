package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/conneroisu/docmux/internal/builder"
	"github.com/conneroisu/docmux/internal/logging"
	"github.com/conneroisu/docmux/internal/postprocess"
	"github.com/conneroisu/docmux/internal/routes"
)

// Event is the classification of one changed path. It is one of
// HomeChanged, ProjectSourceChanged or Ignored.
type Event interface {
	isEvent()
}

// HomeChanged means a home page source changed.
type HomeChanged struct{}

// ProjectSourceChanged means a source file of Project changed.
type ProjectSourceChanged struct {
	Project string
}

// Ignored means the change needs no action.
type Ignored struct {
	Reason string
}

func (HomeChanged) isEvent()          {}
func (ProjectSourceChanged) isEvent() {}
func (Ignored) isEvent()              {}

// Extension returns the file extension of path without the leading dot.
func Extension(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}

// Classify decides what a change to path means for the tree under root.
func Classify(root, path string) Event {
	switch ext := Extension(path); ext {
	case "md":
		return HomeChanged{}
	case "rst":
		project, ok := firstSegment(root, path)
		if !ok {
			return Ignored{Reason: "source file outside any project"}
		}
		return ProjectSourceChanged{Project: project}
	default:
		return Ignored{Reason: fmt.Sprintf("unhandled extension %q", ext)}
	}
}

func firstSegment(root, path string) (string, bool) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", false
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 || parts[0] == ".." || parts[0] == "." || parts[0] == "" {
		return "", false
	}

	return parts[0], true
}

// Driver runs builds on behalf of the dispatcher.
type Driver interface {
	Build(ctx context.Context, req builder.Request) (*builder.Result, error)
	BuildHome(ctx context.Context) error
}

// OfflineFlag reports whether remote fonts should be stripped.
type OfflineFlag interface {
	Offline() bool
}

// Dispatcher turns debounced change batches into rebuilds.
type Dispatcher struct {
	Root    string
	Store   routes.Store
	Source  routes.Source
	Driver  Driver
	State   OfflineFlag
	SiteDir string
	Logger  logging.Logger
}

// Handle processes events in order. Only created and modified files trigger
// rebuilds. A failure for one event is logged and the remaining events are
// still handled.
func (d *Dispatcher) Handle(ctx context.Context, events []ChangeEvent) error {
	logger := d.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	for _, change := range events {
		if err := ctx.Err(); err != nil {
			return err
		}

		if change.Type == EventTypeDeleted || change.Type == EventTypeRenamed {
			logger.Debug(ctx, "Ignoring change", "path", change.Path, "type", change.Type.String())
			continue
		}

		event := Classify(d.Root, change.Path)
		if ignored, ok := event.(Ignored); ok {
			logger.Debug(ctx, "Ignoring change", "path", change.Path, "reason", ignored.Reason)
			continue
		}

		if _, err := routes.Refresh(ctx, d.Store, d.Source); err != nil {
			logger.Warn(ctx, err, "Failed to refresh routes", "path", change.Path)
		}

		if err := d.dispatch(ctx, event); err != nil {
			logger.Error(ctx, err, "Rebuild failed", "path", change.Path)
		}
	}

	return nil
}

func (d *Dispatcher) dispatch(ctx context.Context, event Event) error {
	switch e := event.(type) {
	case HomeChanged:
		if err := d.Driver.BuildHome(ctx); err != nil {
			return err
		}
		if d.State != nil && d.State.Offline() {
			if _, err := postprocess.StripRemoteFonts(d.SiteDir); err != nil {
				return fmt.Errorf("stripping remote fonts: %w", err)
			}
		}
		return nil
	case ProjectSourceChanged:
		_, err := d.Driver.Build(ctx, builder.Request{
			Projects: []string{e.Project},
			Force:    true,
		})
		return err
	case Ignored:
		return nil
	default:
		return fmt.Errorf("unknown event %T", event)
	}
}

// Handler adapts Handle to a ChangeHandler bound to ctx.
func (d *Dispatcher) Handler(ctx context.Context) ChangeHandler {
	return func(events []ChangeEvent) error {
		return d.Handle(ctx, events)
	}
}
