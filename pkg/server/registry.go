package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Player is the ephemeral, process-lifetime view of a connected client.
// ID, Name and Conn never change after registration; the session binding is
// mutated only through the registry so every access stays behind its lock.
type Player struct {
	ID          string
	Name        string
	Conn        *Connection
	ConnectedAt time.Time

	gameID string
}

// Registry tracks live players keyed by generated identity and routes
// outbound messages. There is no reconnect path: a new connection always
// produces a fresh identity.
type Registry struct {
	mu      sync.RWMutex
	players map[string]*Player
	logger  *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		players: make(map[string]*Player),
		logger:  logger,
	}
}

// Register creates a fresh identity for the connection and stores it.
func (r *Registry) Register(conn *Connection, name string) *Player {
	p := &Player{
		ID:          uuid.NewString(),
		Name:        name,
		Conn:        conn,
		ConnectedAt: time.Now(),
	}

	r.mu.Lock()
	r.players[p.ID] = p
	r.mu.Unlock()

	r.logger.Info("player registered",
		zap.String("player_id", p.ID),
		zap.String("name", name))
	return p
}

// Get returns the live player for an identity.
func (r *Registry) Get(playerID string) (*Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[playerID]
	return p, ok
}

// Send routes a message to a player if they are still connected. Best
// effort: an unknown identity is a no-op, and transport failures surface
// through the target's own read loop rather than here.
func (r *Registry) Send(playerID string, v interface{}) {
	r.mu.RLock()
	p, ok := r.players[playerID]
	r.mu.RUnlock()

	if ok {
		p.Conn.Send(v)
	}
}

// Forget removes all registry state for a departing player.
func (r *Registry) Forget(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.players[playerID]; ok {
		delete(r.players, playerID)
		r.logger.Info("player forgotten", zap.String("player_id", playerID))
	}
}

// BindSession records that the player entered a session. A player holds at
// most one session at a time.
func (r *Registry) BindSession(playerID, gameID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.players[playerID]; ok {
		p.gameID = gameID
	}
}

// ReleaseSession clears the player's session binding.
func (r *Registry) ReleaseSession(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.players[playerID]; ok {
		p.gameID = ""
	}
}

// SessionOf returns the game the player is currently bound to, if any.
func (r *Registry) SessionOf(playerID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.players[playerID]; ok {
		return p.gameID
	}
	return ""
}

// Count returns the number of live players.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}
