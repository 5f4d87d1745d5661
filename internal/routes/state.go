package routes

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/conneroisu/docmux/internal/errors"
)

// State is process-independent runtime state shared next to the route table.
type State struct {
	Offline bool `json:"offline"`
}

// StateFile persists State as JSON. A missing file is the zero State.
type StateFile struct {
	path string
	mu   sync.Mutex
}

// NewStateFile creates a StateFile backed by path.
func NewStateFile(path string) *StateFile {
	return &StateFile{path: path}
}

// Load reads the stored state.
func (f *StateFile) Load() (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return State{}, nil
	}
	if err != nil {
		return State{}, errors.WrapIO(err, f.path, "failed to read state")
	}

	var st State
	if len(data) > 0 {
		if err := json.Unmarshal(data, &st); err != nil {
			return State{}, errors.NewIOError("STATE_DECODE", "state file is corrupt", err).WithFile(f.path)
		}
	}

	return st, nil
}

// Save replaces the stored state.
func (f *StateFile) Save(st State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return errors.NewInternalError("STATE_ENCODE", "failed to encode state", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := writeFileAtomic(f.path, data); err != nil {
		return errors.WrapIO(err, f.path, "failed to write state")
	}

	return nil
}

// SetOffline records the offline flag.
func (f *StateFile) SetOffline(offline bool) error {
	st, err := f.Load()
	if err != nil {
		st = State{}
	}
	st.Offline = offline

	return f.Save(st)
}

// Offline reports the stored offline flag. Unreadable state counts as online.
func (f *StateFile) Offline() bool {
	st, err := f.Load()
	if err != nil {
		return false
	}

	return st.Offline
}
