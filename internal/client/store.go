package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/novaacademy/aula-virtual/internal/domain"
)

// Session is the token and user returned by a successful login. They are
// stored and cleared together.
type Session struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (s *Session) valid() bool {
	return s != nil && s.Token != "" && s.User != nil
}

// Store persists the current session. Only the login flow saves; anything
// may clear. Implementations must be safe for concurrent use.
type Store interface {
	// Load returns nil when there is no session.
	Load() (*Session, error)
	Save(s *Session) error
	// Clear removes the session and reports whether one existed.
	Clear() (bool, error)
	// ClearIf removes the session only while it still holds token, and
	// reports whether it did. A session saved by a later login survives.
	ClearIf(token string) (bool, error)
}

type MemoryStore struct {
	mu      sync.Mutex
	session *Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, nil
	}
	cp := *m.session
	return &cp, nil
}

func (m *MemoryStore) Save(s *Session) error {
	if !s.valid() {
		return errors.New("session needs both token and user")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.session = &cp
	return nil
}

func (m *MemoryStore) Clear() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	had := m.session != nil
	m.session = nil
	return had, nil
}

func (m *MemoryStore) ClearIf(token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token == "" || m.session == nil || m.session.Token != token {
		return false, nil
	}
	m.session = nil
	return true, nil
}

// FileStore keeps the session in a JSON file readable only by the owner, so
// consecutive CLI invocations share it.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load() (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *FileStore) load() (*Session, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	// A half-written session is treated as no session at all.
	if !s.valid() {
		return nil, nil
	}
	return &s, nil
}

func (f *FileStore) Save(s *Session) error {
	if !s.valid() {
		return errors.New("session needs both token and user")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	// Write then rename so readers never see a partial file.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) Clear() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.remove()
}

// ClearIf compares and removes under the store's lock. Another process
// rewriting the file in between is not covered.
func (f *FileStore) ClearIf(token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if token == "" {
		return false, nil
	}
	current, err := f.load()
	if err != nil {
		return false, err
	}
	if current == nil || current.Token != token {
		return false, nil
	}
	return f.remove()
}

func (f *FileStore) remove() (bool, error) {
	err := os.Remove(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("remove session file: %w", err)
	}
	return true, nil
}
