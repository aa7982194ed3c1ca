package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// TokenStore persists the verified passcode between runs.
type TokenStore interface {
	// Load returns the saved token, or "" when none is saved.
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// PreferenceStore persists display preferences between runs.
type PreferenceStore interface {
	HideOutOfStock() (bool, error)
	SetHideOutOfStock(hide bool) error
}

// fileData is the on-disk layout of FileStore.
type fileData struct {
	Passcode       string `json:"passcode,omitempty"`
	HideOutOfStock bool   `json:"hide_out_of_stock"`
}

// FileStore keeps the passcode and preferences in one JSON file readable
// only by its owner. It implements TokenStore and PreferenceStore.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by path. The file is created on the
// first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) read() (fileData, error) {
	var d fileData
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return d, nil
		}
		return d, fmt.Errorf("read %s: %w", s.path, err)
	}
	if err := json.Unmarshal(data, &d); err != nil {
		return fileData{}, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return d, nil
}

func (s *FileStore) write(d fileData) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(s.path), err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) update(fn func(*fileData)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.read()
	if err != nil {
		d = fileData{}
	}
	fn(&d)
	return s.write(d)
}

// Load implements TokenStore.
func (s *FileStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.read()
	return d.Passcode, err
}

// Save implements TokenStore.
func (s *FileStore) Save(token string) error {
	return s.update(func(d *fileData) { d.Passcode = token })
}

// Clear implements TokenStore.
func (s *FileStore) Clear() error {
	return s.update(func(d *fileData) { d.Passcode = "" })
}

// HideOutOfStock implements PreferenceStore.
func (s *FileStore) HideOutOfStock() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.read()
	return d.HideOutOfStock, err
}

// SetHideOutOfStock implements PreferenceStore.
func (s *FileStore) SetHideOutOfStock(hide bool) error {
	return s.update(func(d *fileData) { d.HideOutOfStock = hide })
}

// MemoryStore is a TokenStore and PreferenceStore that forgets on exit.
type MemoryStore struct {
	mu    sync.Mutex
	token string
	hide  bool
}

func (m *MemoryStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

func (m *MemoryStore) HideOutOfStock() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hide, nil
}

func (m *MemoryStore) SetHideOutOfStock(hide bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hide = hide
	return nil
}

var (
	_ TokenStore      = (*FileStore)(nil)
	_ PreferenceStore = (*FileStore)(nil)
	_ TokenStore      = (*MemoryStore)(nil)
	_ PreferenceStore = (*MemoryStore)(nil)
)
