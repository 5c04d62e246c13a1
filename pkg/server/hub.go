// Package server hosts the connection-facing coordination layer: the hub,
// the live-player registry, the matchmaking queue and the websocket plumbing.
package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"matchhub/pkg/config"
	"matchhub/pkg/events"
	"matchhub/pkg/game"
	"matchhub/pkg/messages"
	"matchhub/pkg/store"
)

// persistTimeout bounds every statistics write triggered from the hot path.
const persistTimeout = 5 * time.Second

// Hub binds registry, matchmaking queue, session table and statistics store
// together. Handlers run on each connection's read goroutine; the components
// own their locks, so unrelated games never serialize against each other.
type Hub struct {
	registry   *Registry
	matchmaker *Matchmaker
	sessions   *game.Manager

	// mu serializes queue membership and session-binding transitions, so
	// a pairing and a disconnect touching the same player cannot
	// interleave. Move and chat handling never takes it.
	mu sync.Mutex

	store     store.Store
	publisher *events.Publisher
	cfg       *config.Config
	logger    *zap.Logger
}

// NewHub creates the coordinator and its owned components.
func NewHub(cfg *config.Config, st store.Store, publisher *events.Publisher, logger *zap.Logger) *Hub {
	return &Hub{
		registry:   NewRegistry(logger),
		matchmaker: NewMatchmaker(logger),
		sessions:   game.NewManager(logger),
		store:      st,
		publisher:  publisher,
		cfg:        cfg,
		logger:     logger,
	}
}

// Registry exposes the live-player registry for the HTTP layer.
func (h *Hub) Registry() *Registry { return h.registry }

// Sessions exposes the live session table for the HTTP layer.
func (h *Hub) Sessions() *game.Manager { return h.sessions }

// HandleMessage decodes one inbound frame and dispatches it. The first
// message on a connection must be a register; everything else is rejected
// until registration completes, with the connection left open.
func (h *Hub) HandleMessage(c *Connection, raw []byte) {
	msg, err := messages.Decode(raw)
	if err != nil {
		h.logger.Debug("rejected inbound frame", zap.Error(err))
		c.Send(messages.NewError("Invalid message"))
		return
	}

	if c.playerID == "" {
		reg, ok := msg.(messages.Register)
		if !ok {
			c.Send(messages.NewError("Must register first"))
			return
		}
		h.handleRegister(c, reg)
		return
	}

	switch m := msg.(type) {
	case messages.Register:
		c.Send(messages.NewError("Already registered"))
	case messages.Join:
		h.handleJoin(c, m)
	case messages.Move:
		h.handleMove(c, m)
	case messages.Chat:
		h.handleChat(c, m)
	case messages.GameEnd:
		h.handleGameEnd(c, m)
	case messages.Ping:
		c.Send(messages.NewPong())
	}
}

func (h *Hub) handleRegister(c *Connection, m messages.Register) {
	name := m.Name
	if name == "" {
		name = fmt.Sprintf("Player%d", h.registry.Count()+1)
	}

	player := h.registry.Register(c, name)
	c.playerID = player.ID

	// The persistent profile is best effort: a store outage must not block
	// registration, only lose the last-seen refresh.
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if _, err := h.store.UpsertPlayer(ctx, player.ID, name); err != nil {
		h.logger.Error("persisting player profile",
			zap.String("player_id", player.ID), zap.Error(err))
	}

	c.Send(messages.NewRegistered(player.ID, name))

	h.publisher.Publish(events.Event{
		Type:     events.EventPlayerRegistered,
		PlayerID: player.ID,
		Payload:  name,
	})
}

func (h *Hub) handleJoin(c *Connection, m messages.Join) {
	player, ok := h.registry.Get(c.playerID)
	if !ok {
		return
	}

	gameType := m.GameType
	if gameType == "" {
		gameType = "chess"
	}
	if !h.cfg.KnownGameType(gameType) {
		c.Send(messages.NewError(fmt.Sprintf("Unknown game type %q", gameType)))
		return
	}

	// Pairing is one critical section with disconnect handling: a
	// concurrent disconnect of the matched waiter either empties the
	// queue before the scan or observes the finished binding and
	// abandons the session.
	h.mu.Lock()

	if h.registry.SessionOf(player.ID) != "" {
		h.mu.Unlock()
		c.Send(messages.NewError("Already in a game"))
		return
	}

	session := h.matchmaker.Join(player, gameType)
	if session == nil {
		h.mu.Unlock()
		c.Send(messages.NewWaiting())
		return
	}

	h.sessions.Add(session)
	h.registry.BindSession(session.White.ID, session.ID)
	h.registry.BindSession(session.Black.ID, session.ID)

	h.notifyStarted(session, session.White)
	h.notifyStarted(session, session.Black)

	h.mu.Unlock()

	h.publisher.Publish(events.Event{
		Type:   events.EventGameStarted,
		GameID: session.ID,
	})
}

func (h *Hub) notifyStarted(session *game.Session, p game.Participant) {
	opponent := session.Opponent(p.ID)
	h.registry.Send(p.ID, messages.GameStarted{
		Type:       "game_started",
		GameID:     session.ID,
		GameType:   session.GameType,
		Opponent:   opponent.Name,
		OpponentID: opponent.ID,
		YourColor:  session.Color(p.ID),
		YourTurn:   session.CurrentTurn() == p.ID,
	})
}

func (h *Hub) handleMove(c *Connection, m messages.Move) {
	session, ok := h.sessions.Get(m.GameID)
	if !ok || !session.HasParticipant(c.playerID) {
		c.Send(messages.NewError("Invalid game ID"))
		return
	}

	opponent, err := session.SubmitMove(c.playerID, m.Move)
	switch {
	case errors.Is(err, game.ErrNotYourTurn):
		c.Send(messages.NewError("Not your turn!"))
		return
	case errors.Is(err, game.ErrInvalidSession):
		c.Send(messages.NewError("Game is no longer active"))
		return
	case err != nil:
		c.Send(messages.NewError("Move rejected"))
		return
	}

	c.Send(messages.NewMoveApplied(session.ID, m.Move))
	h.registry.Send(opponent.ID, messages.NewOpponentMove(session.ID, m.Move))
}

func (h *Hub) handleChat(c *Connection, m messages.Chat) {
	session, ok := h.sessions.Get(m.GameID)
	if !ok || !session.HasParticipant(c.playerID) {
		return
	}

	player, ok := h.registry.Get(c.playerID)
	if !ok {
		return
	}

	opponent := session.Opponent(c.playerID)
	h.registry.Send(opponent.ID, messages.NewChatRelay(session.ID, player.Name, m.Message))
}

func (h *Hub) handleGameEnd(c *Connection, m messages.GameEnd) {
	session, ok := h.sessions.Get(m.GameID)
	if !ok || !session.HasParticipant(c.playerID) {
		c.Send(messages.NewError("Invalid game ID"))
		return
	}

	if !game.ValidResult(m.Result) {
		c.Send(messages.NewError("Invalid result"))
		return
	}

	rec, err := session.Finish(c.playerID, game.Result(m.Result))
	if err != nil {
		c.Send(messages.NewError("Game is no longer active"))
		return
	}

	saved := h.persistRecord(rec, c)

	opponent := session.Opponent(c.playerID)

	h.mu.Lock()
	h.registry.ReleaseSession(session.White.ID)
	h.registry.ReleaseSession(session.Black.ID)
	h.sessions.Remove(session.ID)
	h.mu.Unlock()

	if saved {
		c.Send(messages.NewGameSaved(session.ID, string(rec.Status)))
		h.registry.Send(opponent.ID, messages.NewGameSaved(session.ID, string(rec.Status)))
	} else {
		// The trigger already got the notice from persistRecord; the
		// opponent still needs to learn the session is over.
		h.registry.Send(opponent.ID, messages.NewError("Game result could not be saved"))
	}

	h.publisher.Publish(events.Event{
		Type:   events.EventGameFinished,
		GameID: session.ID,
	})
}

// persistRecord writes a finalization record through to the store. A failure
// is logged and surfaced to the triggering connection as a non-fatal notice;
// it never resurrects the session or blocks cleanup.
func (h *Hub) persistRecord(rec *game.Record, trigger *Connection) bool {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := h.store.RecordGame(ctx, rec); err != nil {
		h.logger.Error("persisting game record",
			zap.String("game_id", rec.GameID), zap.Error(err))
		if trigger != nil {
			trigger.Send(messages.NewError("Game result could not be saved"))
		}
		return false
	}
	return true
}

// HandleDisconnect runs the cleanup path for a closed connection: leave the
// queue, abandon any active session, persist and notify the opponent, then
// drop registry state. In-memory cleanup always completes, even when the
// statistics write fails.
func (h *Hub) HandleDisconnect(c *Connection) {
	if c.playerID == "" {
		return
	}

	playerID := c.playerID

	var (
		rec    *game.Record
		gameID string
	)

	h.mu.Lock()
	h.matchmaker.Remove(playerID)

	if bound := h.registry.SessionOf(playerID); bound != "" {
		if session, ok := h.sessions.Get(bound); ok {
			rec = h.abandonSession(session, playerID)
			gameID = session.ID
		}
	}

	h.registry.Forget(playerID)
	h.mu.Unlock()

	// The statistics write happens outside the critical section; a slow
	// store must not stall other pairings.
	if rec != nil {
		h.persistRecord(rec, nil)
		h.publisher.Publish(events.Event{
			Type:   events.EventGameAbandoned,
			GameID: gameID,
		})
	}

	h.publisher.Publish(events.Event{
		Type:     events.EventConnectionClosed,
		PlayerID: playerID,
	})
}

// abandonSession finalizes a session whose participant departed and returns
// the record to persist, or nil when the session had already reached a
// terminal state. Caller holds h.mu.
func (h *Hub) abandonSession(session *game.Session, departingID string) *game.Record {
	rec, err := session.Abandon()
	if err == nil {
		opponent := session.Opponent(departingID)
		h.registry.Send(opponent.ID, messages.NewOpponentDisconnected(session.ID))
		h.registry.ReleaseSession(opponent.ID)
	}

	h.sessions.Remove(session.ID)
	return rec
}
