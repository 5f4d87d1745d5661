package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocmuxError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DocmuxError
		expected string
	}{
		{
			name:     "message only",
			err:      &DocmuxError{Message: "boom"},
			expected: "boom",
		},
		{
			name:     "code and project",
			err:      NewBuildError("PROJECT_BUILD", "build failed", nil).WithProject("foo"),
			expected: "[PROJECT_BUILD] project:foo build failed",
		},
		{
			name:     "file and cause",
			err:      NewIOError("READ", "read failed", fmt.Errorf("disk")).WithFile("docs/index.md"),
			expected: "[READ] docs/index.md read failed: disk",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestDocmuxError_IsAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := NewBuildError("X", "wrapped", cause)

	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, NewBuildError("X", "other message", nil)))
	assert.False(t, errors.Is(err, NewBuildError("Y", "wrapped", nil)))
	assert.False(t, errors.Is(err, NewConfigError("X", "wrapped")))
}

func TestErrorClassification(t *testing.T) {
	cfg := NewConfigError("CONFLICT", "conflicting flags")
	assert.True(t, IsConfigError(cfg))
	assert.True(t, IsRecoverable(cfg))
	assert.False(t, IsBuildError(cfg))
	assert.Equal(t, ErrorTypeConfig, GetErrorType(fmt.Errorf("wrapped: %w", cfg)))

	assert.Equal(t, ErrorTypeInternal, GetErrorType(fmt.Errorf("plain")))
	assert.False(t, IsRecoverable(fmt.Errorf("plain")))
}

func TestFileNotFound(t *testing.T) {
	err := FileNotFound("docs/index.md", nil)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "docs/index.md")

	_, statErr := os.Stat(filepath.Join(t.TempDir(), "missing"))
	wrapped := WrapIO(statErr, "missing", "stat failed")
	assert.True(t, IsNotFound(wrapped))
	assert.True(t, errors.Is(wrapped, fs.ErrNotExist))

	assert.NoError(t, WrapIO(nil, "x", "y"))
	other := WrapIO(fmt.Errorf("permission denied"), "x", "read failed")
	assert.False(t, IsNotFound(other))
}

func TestSuggestProjectRoots(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"docs-b", "docs-a", "plain"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, name), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs-a", "mkdocs.yml"), []byte("site_name: a\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs-b", "mkdocs.yml"), []byte("site_name: b\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mkdocs.yml"), []byte("site_name: root\n"), 0o644))

	assert.Equal(t, []string{"./docs-a", "./docs-b"}, SuggestProjectRoots(dir, ""))
	assert.Empty(t, SuggestProjectRoots(filepath.Join(dir, "missing"), ""))
}

func TestSuggestPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "home"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "home", "mkdocs.yml"), nil, 0o644))

	ctx := &SuggestionContext{WorkDir: dir, Command: "docmux serve", IndexPath: "docs/index.md"}

	t.Run("missing file gets suggestions", func(t *testing.T) {
		err := SuggestPath(ctx, func() error {
			return FileNotFound("docs/index.md", nil)
		})
		require.Error(t, err)

		var enhanced *EnhancedError
		require.True(t, errors.As(err, &enhanced))
		assert.True(t, IsNotFound(err))
		assert.Contains(t, err.Error(), "./home")
		assert.Contains(t, err.Error(), "docmux serve")
	})

	t.Run("other errors pass through", func(t *testing.T) {
		plain := fmt.Errorf("boom")
		assert.Same(t, plain, SuggestPath(ctx, func() error { return plain }))
	})

	t.Run("success", func(t *testing.T) {
		assert.NoError(t, SuggestPath(ctx, func() error { return nil }))
	})
}

func TestServerStartError(t *testing.T) {
	suggestions := ServerStartError(fmt.Errorf("listen tcp :8443: bind: address already in use"), 8443, &SuggestionContext{})
	require.Len(t, suggestions, 2)
	assert.Equal(t, "docmux serve --port 8444", suggestions[1].Command)

	suggestions = ServerStartError(fmt.Errorf("listen tcp :80: bind: permission denied"), 80, &SuggestionContext{})
	titles := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		titles = append(titles, s.Title)
	}
	assert.Contains(t, titles, "Use unprivileged port")
}

func TestFormatSuggestions(t *testing.T) {
	assert.Equal(t, "title", FormatSuggestions("title", nil))

	out := FormatSuggestions("Failed", []ErrorSuggestion{{
		Title:       "Do this",
		Description: "because",
		Command:     "ls",
		Example:     "x",
	}})
	assert.Contains(t, out, "Suggestions:")
	assert.Contains(t, out, "  1. Do this")
	assert.Contains(t, out, "Run: ls")
	assert.Contains(t, out, "Example: x")
}
