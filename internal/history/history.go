// Package history remembers recently used targets, most recent first.
package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/timvw/pane-send/internal/model"
	"gopkg.in/yaml.v3"
)

// MaxEntries is the number of targets kept.
const MaxEntries = 10

// Store persists recently used targets.
type Store interface {
	// Recent returns targets ordered most-recent-first.
	Recent() []model.Target
	// Add moves target to the front, dropping duplicates and old entries.
	Add(target model.Target) error
	// Clear forgets all targets.
	Clear() error
}

// Last returns the most recent target in s, if any.
func Last(s Store) (model.Target, bool) {
	recent := s.Recent()
	if len(recent) == 0 {
		return model.Target{}, false
	}
	return recent[0], true
}

// push returns list with target in front, de-duplicated by value and capped
// at MaxEntries.
func push(list []model.Target, target model.Target) []model.Target {
	out := make([]model.Target, 0, len(list)+1)
	out = append(out, target)
	for _, t := range list {
		if t == target {
			continue
		}
		out = append(out, t)
	}
	if len(out) > MaxEntries {
		out = out[:MaxEntries]
	}
	return out
}

// MemoryStore keeps history in memory only.
type MemoryStore struct {
	mu      sync.Mutex
	targets []model.Target
}

// NewMemoryStore creates a MemoryStore seeded with targets.
func NewMemoryStore(targets ...model.Target) *MemoryStore {
	return &MemoryStore{targets: targets}
}

func (m *MemoryStore) Recent() []model.Target {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Target(nil), m.targets...)
}

func (m *MemoryStore) Add(target model.Target) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.targets = push(m.targets, target)
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.targets = nil
	return nil
}

// file is the on-disk layout.
type file struct {
	Recent []model.Target `yaml:"recent"`
}

// FileStore keeps history in a YAML file.
type FileStore struct {
	Path string

	mu sync.Mutex
}

// NewFileStore creates a FileStore at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// DefaultPath returns $XDG_STATE_HOME/pane-send/recent.yaml, falling back
// to ~/.local/state/pane-send/recent.yaml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "pane-send", "recent.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "state", "pane-send", "recent.yaml"), nil
}

// Recent returns the stored targets. A missing or unreadable file yields
// an empty history.
func (f *FileStore) Recent() []model.Target {
	f.mu.Lock()
	defer f.mu.Unlock()
	targets, _ := f.load()
	return targets
}

func (f *FileStore) Add(target model.Target) error {
	if err := target.Validate(); err != nil {
		return fmt.Errorf("remember target: %w", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	targets, err := f.load()
	if err != nil {
		// A corrupt file is replaced rather than blocking every send.
		targets = nil
	}
	return f.save(push(targets, target))
}

func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.save(nil)
}

func (f *FileStore) load() ([]model.Target, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history %s: %w", f.Path, err)
	}
	var h file
	if err := yaml.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("parse history %s: %w", f.Path, err)
	}
	var targets []model.Target
	for _, t := range h.Recent {
		if t.Validate() == nil {
			targets = append(targets, t)
		}
	}
	return targets, nil
}

// save writes atomically via a temp file in the same directory.
func (f *FileStore) save(targets []model.Target) error {
	data, err := yaml.Marshal(file{Recent: targets})
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".recent-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp history file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close history: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}
