package routes

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/conneroisu/docmux/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	table, err := Build([]string{"foo", "/bar", "baz/"}, "/home", "")
	require.NoError(t, err)

	expected := Table{
		{Prefix: "/foo", Dir: filepath.FromSlash("/home/foo/build/html")},
		{Prefix: "/bar", Dir: filepath.FromSlash("/home/bar/build/html")},
		{Prefix: "/baz/", Dir: filepath.FromSlash("/home/baz/build/html")},
	}
	assert.Equal(t, expected, table)
}

func TestBuild_CustomSubdirAndRelativeWorkDir(t *testing.T) {
	table, err := Build([]string{"foo"}, ".", "_build/html")
	require.NoError(t, err)
	require.Len(t, table, 1)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "foo", "_build", "html"), table[0].Dir)
	assert.True(t, filepath.IsAbs(table[0].Dir))
}

func TestBuild_Empty(t *testing.T) {
	table, err := Build(nil, "/home", "")
	require.NoError(t, err)
	assert.Empty(t, table)

	data, err := json.Marshal(table)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestBuild_Idempotent(t *testing.T) {
	projects := []string{"a", "b", "c"}

	first, err := Build(projects, "/srv/docs", "")
	require.NoError(t, err)
	second, err := Build(projects, "/srv/docs", "")
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestTableJSON(t *testing.T) {
	table := Table{{Prefix: "/foo", Dir: "/home/foo/build/html"}}

	data, err := json.Marshal(table)
	require.NoError(t, err)
	assert.JSONEq(t, `[["/foo","/home/foo/build/html"]]`, string(data))

	var decoded Table
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, table, decoded)

	var placeholder Table
	require.NoError(t, json.Unmarshal([]byte(`[[]]`), &placeholder))
	assert.Empty(t, placeholder)

	var bad Table
	assert.Error(t, json.Unmarshal([]byte(`[["/only-prefix"]]`), &bad))
}

func TestTableMatch(t *testing.T) {
	table := Table{
		{Prefix: "/a", Dir: "D1"},
		{Prefix: "/ab", Dir: "D2"},
	}

	r, ok := table.Match("/ab/x")
	require.True(t, ok)
	assert.Equal(t, "D1", r.Dir, "first match wins, not longest")

	_, ok = table.Match("/c")
	assert.False(t, ok)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	current, err := store.Current()
	require.NoError(t, err)
	assert.Empty(t, current)

	table := Table{{Prefix: "/foo", Dir: "/x"}}
	require.NoError(t, store.Replace(table))

	table[0].Dir = "/mutated"
	current, err = store.Current()
	require.NoError(t, err)
	assert.Equal(t, "/x", current[0].Dir)

	require.NoError(t, store.Replace(Table{{Prefix: "/bar", Dir: "/y"}}))
	current, err = store.Current()
	require.NoError(t, err)
	assert.Equal(t, Table{{Prefix: "/bar", Dir: "/y"}}, current)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := NewMemoryStore()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Replace(Table{{Prefix: "/a", Dir: "/a"}, {Prefix: "/b", Dir: "/b"}})
		}()
		go func() {
			defer wg.Done()
			current, err := store.Current()
			assert.NoError(t, err)
			assert.Contains(t, []int{0, 2}, len(current))
		}()
	}
	wg.Wait()
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".docmux", "routes.json")
	store := NewFileStore(path)
	assert.Equal(t, path, store.Path())

	current, err := store.Current()
	require.NoError(t, err)
	assert.Empty(t, current)

	table := Table{{Prefix: "/foo", Dir: "/home/foo/build/html"}}
	require.NoError(t, store.Replace(table))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[["/foo","/home/foo/build/html"]]`, string(data))

	other := NewFileStore(path)
	current, err = other.Current()
	require.NoError(t, err)
	assert.Equal(t, table, current)

	require.NoError(t, store.Replace(Table{}))
	current, err = other.Current()
	require.NoError(t, err)
	assert.Empty(t, current)
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path).Current()
	assert.Error(t, err)
}

func TestStateFile(t *testing.T) {
	state := NewStateFile(filepath.Join(t.TempDir(), "state.json"))
	assert.False(t, state.Offline())

	require.NoError(t, state.SetOffline(true))
	assert.True(t, state.Offline())

	st, err := state.Load()
	require.NoError(t, err)
	assert.True(t, st.Offline)

	require.NoError(t, state.SetOffline(false))
	assert.False(t, state.Offline())
}

func TestRefresh(t *testing.T) {
	home := t.TempDir()
	indexPath := filepath.Join(home, "docs", "index.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(indexPath), 0o755))
	require.NoError(t, os.WriteFile(indexPath, []byte("# Projects\n* [Foo](/foo/) - desc\n# Other\n"), 0o644))

	store := NewMemoryStore()
	src := Source{IndexPath: indexPath, WorkDir: home}

	table, err := Refresh(context.Background(), store, src)
	require.NoError(t, err)
	assert.Equal(t, Table{{Prefix: "/foo", Dir: filepath.Join(home, "foo", "build", "html")}}, table)

	current, err := store.Current()
	require.NoError(t, err)
	assert.Equal(t, table, current)

	require.NoError(t, os.WriteFile(indexPath, []byte("# Projects\n* [Bar](/bar/) - desc\n"), 0o644))
	_, err = Refresh(context.Background(), store, src)
	require.NoError(t, err)

	current, err = store.Current()
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Equal(t, "/bar", current[0].Prefix)
}

func TestRefresh_MissingIndex(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Replace(Table{{Prefix: "/keep", Dir: "/keep"}}))

	_, err := Refresh(context.Background(), store, Source{IndexPath: filepath.Join(t.TempDir(), "nope.md"), WorkDir: "/"})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	current, err := store.Current()
	require.NoError(t, err)
	assert.Len(t, current, 1, "a failed refresh keeps the previous table")
}

func TestRefresh_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Refresh(ctx, NewMemoryStore(), Source{})
	assert.ErrorIs(t, err, context.Canceled)
}
