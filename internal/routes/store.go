package routes

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/conneroisu/docmux/internal/errors"
)

// Store holds the current route table. Replace swaps the whole table; readers
// never see a partially written one.
type Store interface {
	Replace(table Table) error
	Current() (Table, error)
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu    sync.RWMutex
	table Table
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{table: Table{}}
}

// Replace implements Store.
func (s *MemoryStore) Replace(table Table) error {
	cp := cloneTable(table)

	s.mu.Lock()
	s.table = cp
	s.mu.Unlock()

	return nil
}

// Current implements Store.
func (s *MemoryStore) Current() (Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneTable(s.table), nil
}

// FileStore keeps the table in a JSON file so that a server started as a
// separate process sees the routes written by the watcher or a build.
// Decoded tables are cached until the file's size or modification time
// changes.
type FileStore struct {
	path string

	mu      sync.Mutex
	cached  Table
	modTime time.Time
	size    int64
	valid   bool
}

// NewFileStore creates a store backed by path. The file is created on the
// first Replace.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Replace implements Store. The file is written to a temporary sibling and
// renamed into place.
func (s *FileStore) Replace(table Table) error {
	data, err := json.Marshal(table)
	if err != nil {
		return errors.NewInternalError("ROUTES_ENCODE", "failed to encode route table", err)
	}

	if err := writeFileAtomic(s.path, data); err != nil {
		return errors.WrapIO(err, s.path, "failed to write route table")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.valid = false
	if info, err := os.Stat(s.path); err == nil {
		s.cached = cloneTable(table)
		s.modTime = info.ModTime()
		s.size = info.Size()
		s.valid = true
	}

	return nil
}

// Current implements Store. A missing file is an empty table.
func (s *FileStore) Current() (Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	if os.IsNotExist(err) {
		s.valid = false
		return Table{}, nil
	}
	if err != nil {
		return nil, errors.WrapIO(err, s.path, "failed to stat route table")
	}

	if s.valid && info.ModTime().Equal(s.modTime) && info.Size() == s.size {
		return cloneTable(s.cached), nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Table{}, nil
		}
		return nil, errors.WrapIO(err, s.path, "failed to read route table")
	}

	var table Table
	if len(data) > 0 {
		if err := json.Unmarshal(data, &table); err != nil {
			return nil, errors.NewIOError("ROUTES_DECODE", "route table is corrupt", err).WithFile(s.path)
		}
	}
	if table == nil {
		table = Table{}
	}

	s.cached = table
	s.modTime = info.ModTime()
	s.size = info.Size()
	s.valid = true

	return cloneTable(table), nil
}

func cloneTable(t Table) Table {
	cp := make(Table, len(t))
	copy(cp, t)
	return cp
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}

	return nil
}
