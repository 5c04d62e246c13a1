package server

import (
	"sync"

	"go.uber.org/zap"

	"matchhub/pkg/game"
)

// Matchmaker keeps one strict-FIFO waiting list per game type. Pairing is
// arrival order only; there is no priority or skill matching. A player may
// wait under several game types at once; the first pairing removes every
// queue entry they hold, so a player never ends up in two sessions.
type Matchmaker struct {
	mu      sync.Mutex
	waiting map[string][]*Player
	logger  *zap.Logger
}

// NewMatchmaker creates an empty matchmaker.
func NewMatchmaker(logger *zap.Logger) *Matchmaker {
	return &Matchmaker{
		waiting: make(map[string][]*Player),
		logger:  logger,
	}
}

// Join pairs the caller with the oldest compatible waiter for the game type
// and returns the new session, waiter as white. With no compatible waiter
// the caller is appended to the list and nil comes back. The scan skips
// entries with the caller's own identity, so a player can never pair with
// itself. Callers must check the player is not already in a session before
// joining; the matchmaker does not know about live sessions.
func (m *Matchmaker) Join(p *Player, gameType string) *game.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	queue := m.waiting[gameType]
	alreadyWaiting := false
	var matched *Player
	for _, waiter := range queue {
		if waiter.ID == p.ID {
			alreadyWaiting = true
			continue
		}
		if matched == nil {
			matched = waiter
		}
	}

	if matched != nil {
		// Pairing ends both players' waits everywhere, not just in this
		// queue, so a multi-queue waiter holds at most one session.
		m.dropFromAll(matched.ID)
		m.dropFromAll(p.ID)

		session := game.NewSession(gameType,
			game.Participant{ID: matched.ID, Name: matched.Name},
			game.Participant{ID: p.ID, Name: p.Name},
		)
		m.logger.Info("players paired",
			zap.String("game_type", gameType),
			zap.String("white", matched.ID),
			zap.String("black", p.ID))
		return session
	}

	// A repeat join while already waiting keeps the original queue slot.
	if alreadyWaiting {
		return nil
	}

	m.waiting[gameType] = append(queue, p)
	m.logger.Debug("player queued",
		zap.String("game_type", gameType),
		zap.String("player_id", p.ID))
	return nil
}

// Remove drops the player from every waiting list. Called on disconnect and
// harmless when the player was never queued.
func (m *Matchmaker) Remove(playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropFromAll(playerID)
}

// dropFromAll clears every queue entry for the player. Caller holds mu.
func (m *Matchmaker) dropFromAll(playerID string) {
	for gameType, queue := range m.waiting {
		rest := queue[:0]
		for _, waiter := range queue {
			if waiter.ID != playerID {
				rest = append(rest, waiter)
			}
		}
		m.waiting[gameType] = rest
	}
}

// WaitingCount returns the queue depth for one game type.
func (m *Matchmaker) WaitingCount(gameType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.waiting[gameType])
}
