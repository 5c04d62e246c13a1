package game

import (
	"sync"

	"go.uber.org/zap"
)

// Manager is the live session table. Sessions are added when matchmaking
// pairs two players and removed immediately after finalization; a session
// that reached a terminal state never stays in the table.
type Manager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewManager creates a new manager with in-memory storage
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

// Add registers a freshly paired session.
func (m *Manager) Add(session *Session) {
	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	m.logger.Info("session created",
		zap.String("session_id", session.ID),
		zap.String("game_type", session.GameType),
		zap.String("white", session.White.ID),
		zap.String("black", session.Black.ID))
}

// Get returns a session by ID
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	return session, ok
}

// Remove drops a finalized session from the table.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; ok {
		delete(m.sessions, id)
		m.logger.Info("session removed", zap.String("session_id", id))
	}
}

// ActiveCount returns the number of live sessions.
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
