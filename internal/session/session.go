// Package session keeps the summary stores of open sessions. A session is
// created empty, grows by processed files and is discarded when it ends;
// nothing outlives the process.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/blctm/gigagreen/pkg/cellkpi/models"
	"github.com/blctm/gigagreen/pkg/cellkpi/summary"
)

// ErrNotFound indicates an unknown or ended session.
var ErrNotFound = errors.New("session not found")

// Session owns one summary store.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu    sync.Mutex
	store *summary.Store
}

// Update runs fn with exclusive access to the session store.
func (s *Session) Update(fn func(*summary.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.store)
}

// Combined returns the session's combined table.
func (s *Session) Combined() models.CombinedTable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Combined()
}

// Len returns the number of records in the session.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Len()
}

// Manager tracks open sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	newStore func() *summary.Store
	now      func() time.Time
}

// NewManager returns a manager whose sessions start with stores from newStore.
func NewManager(newStore func() *summary.Store) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		newStore: newStore,
		now:      time.Now,
	}
}

// Create opens a session with an empty store.
func (m *Manager) Create() *Session {
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: m.now().UTC(),
		store:     m.newStore(),
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get returns the open session with the given id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// End discards a session and its records.
func (m *Manager) End(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
