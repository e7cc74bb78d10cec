package alerts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// State is the client-side overlay for one alert
type State struct {
	IsRead      bool `json:"isRead"`
	IsDismissed bool `json:"isDismissed"`
}

// StateStore persists the whole overlay map at once. Save replaces the
// stored map; there are no partial writes.
type StateStore interface {
	Load() (map[string]State, error)
	Save(state map[string]State) error
}

// MemoryStore keeps state in process memory
type MemoryStore struct {
	mu    sync.Mutex
	state map[string]State
	saves int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: make(map[string]State)}
}

func (m *MemoryStore) Load() (map[string]State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyState(m.state), nil
}

func (m *MemoryStore) Save(state map[string]State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = copyState(state)
	m.saves++
	return nil
}

// Saves reports how many times Save was called
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// FileStore keeps state as a JSON object in a single local file
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore creates a file-backed store; the file is created on first save
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger}
}

// Load reads the state file. A missing file is an empty map. A file that
// cannot be decoded is logged and treated as empty; the next Save
// overwrites it.
func (f *FileStore) Load() (map[string]State, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]State), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read alert state: %w", err)
	}

	return DecodeState(data, f.logger.With(zap.String("path", f.path))), nil
}

// DecodeState parses a persisted overlay. Empty input is an empty map. Input
// that cannot be decoded is logged and treated as empty so the next Save
// overwrites it.
func DecodeState(data []byte, logger *zap.Logger) map[string]State {
	state := make(map[string]State)
	if len(data) == 0 {
		return state
	}
	if err := json.Unmarshal(data, &state); err != nil {
		logger.Warn("Discarding corrupted alert state", zap.Error(err))
		return make(map[string]State)
	}
	return state
}

// Save writes the state through a temp file and rename
func (f *FileStore) Save(state map[string]State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode alert state: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".alert-state-*")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write alert state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write alert state: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace alert state: %w", err)
	}
	return nil
}

func copyState(src map[string]State) map[string]State {
	dst := make(map[string]State, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
