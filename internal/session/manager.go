package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/orato-app/orato/internal/report"
)

// ErrNotFound is returned by Manager.Get for unknown session IDs.
var ErrNotFound = errors.New("session: not found")

// Manager owns the set of live sessions. Sessions are kept in memory;
// finished reports that need to outlive the process go through the store
// layer instead.
//
// All methods are safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Create starts a new session over the given questions and registers it.
// The question list must be non-empty and the mode must be known. reference
// may be "" when the session has no script to recite against.
func (m *Manager) Create(mode report.Mode, questions []string, reference string) (*Session, error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("session: unknown mode %q", mode)
	}
	if len(questions) == 0 {
		return nil, errors.New("session: question list is empty")
	}

	s := newSession(mode, questions, reference)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

// Get looks up a session by ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Remove drops a session from the registry. Removing an unknown ID is a
// no-op.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
