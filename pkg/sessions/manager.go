package sessions

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cardtable/cardtable/pkg/log"
	"github.com/cardtable/cardtable/pkg/repositories"
)

// SessionInfo is an immutable snapshot of a running session, served by
// the status API.
type SessionInfo struct {
	ID      string    `json:"id"`
	Started time.Time `json:"started"`
	Players []string  `json:"players"`
}

// Manager tracks running sessions and creates new ones as the lobby
// pairs connections.
type Manager struct {
	lock     sync.RWMutex
	sessions map[string]*Session
	results  chan<- repositories.MatchResult
}

// NewManagerOptions contains options for creating a new Manager.
type NewManagerOptions struct {
	// Results is handed to each session; one record is emitted per
	// completed match.
	Results chan<- repositories.MatchResult
}

func NewManager(opts NewManagerOptions) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		results:  opts.Results,
	}
}

// CreateSession starts a session for the two connections and registers
// it with the manager. The session removes itself when destroyed.
func (m *Manager) CreateSession(a, b Connection) (*Session, error) {
	session, err := NewSession(NewSessionOptions{
		ID:      uuid.NewString(),
		Conns:   [2]Connection{a, b},
		Results: m.results,
		OnDestroy: func(s *Session) {
			m.remove(s.ID())
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %v", err)
	}

	m.lock.Lock()
	m.sessions[session.ID()] = session
	m.lock.Unlock()

	session.Start()
	log.Info("session %s: started with players %s and %s", session.ID(), a.ID(), b.ID())

	return session, nil
}

func (m *Manager) remove(id string) {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.sessions, id)
}

// Count returns the number of running sessions.
func (m *Manager) Count() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.sessions)
}

// Sessions returns snapshots of all running sessions.
func (m *Manager) Sessions() []SessionInfo {
	m.lock.RLock()
	defer m.lock.RUnlock()
	infos := make([]SessionInfo, 0, len(m.sessions))
	for _, session := range m.sessions {
		infos = append(infos, session.Info())
	}
	return infos
}

// CloseAll destroys every running session. Used on server shutdown.
func (m *Manager) CloseAll() {
	m.lock.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, session)
	}
	m.lock.RUnlock()

	for _, session := range sessions {
		session.Destroy()
	}
}
