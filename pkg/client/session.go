package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// SessionState is what a TokenStore persists between runs.
type SessionState struct {
	Token string `yaml:"token"`
	User  *User  `yaml:"user,omitempty"`
}

// TokenStore persists the session. It is only touched at session boundaries.
type TokenStore interface {
	Load() (*SessionState, error)
	Save(state SessionState) error
	Clear() error
}

// Session holds the bearer token and identity for one signed-in user.
// The zero value is not usable; call NewSession.
type Session struct {
	mu    sync.RWMutex
	store TokenStore
	state SessionState
}

// NewSession wraps store. A nil store keeps the session in memory only.
func NewSession(store TokenStore) *Session {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Session{store: store}
}

// Restore loads a previously saved session. A missing store entry is not an error.
func (s *Session) Restore() error {
	state, err := s.store.Load()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if state == nil {
		s.state = SessionState{}
		return nil
	}
	s.state = *state
	return nil
}

// Token returns the bearer token, or "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.User == nil {
		return nil
	}
	u := *s.state.User
	return &u
}

func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

func (s *Session) IsSubscriber() bool {
	u := s.User()
	return u != nil && u.IsSubscriber
}

func (s *Session) begin(token string, user *User) error {
	state := SessionState{Token: token, User: user}
	if err := s.store.Save(state); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	return nil
}

// end forgets the in-memory state even when the store cannot be cleared.
func (s *Session) end() error {
	s.mu.Lock()
	s.state = SessionState{}
	s.mu.Unlock()
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// MemoryStore keeps the session for the life of the process.
type MemoryStore struct {
	mu    sync.Mutex
	state *SessionState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (*SessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil, nil
	}
	cp := *m.state
	return &cp, nil
}

func (m *MemoryStore) Save(state SessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = &state
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = nil
	return nil
}

// FileStore persists the session as YAML readable only by the owner.
type FileStore struct {
	Path string
}

const sessionFileMode = 0o600

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// DefaultSessionPath returns ~/.config/buzdealz/session.yaml.
func DefaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".buzdealz-session.yaml"
	}
	return filepath.Join(dir, "buzdealz", "session.yaml")
}

func (f *FileStore) Load() (*SessionState, error) {
	raw, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return nil, nil
	}
	var state SessionState
	if err := yaml.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}
	return &state, nil
}

func (f *FileStore) Save(state SessionState) error {
	raw, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, raw, sessionFileMode); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return os.Rename(tmp, f.Path)
}

func (f *FileStore) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
