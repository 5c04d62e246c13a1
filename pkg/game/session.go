// Package game owns the per-session turn state machine and the live
// session table. Move payloads are opaque; nothing here understands the
// rules of the game being played.
package game

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"matchhub/internal/color"
)

// Status is the lifecycle state of a session. Active is the only non-terminal
// state; a session never leaves finished or abandoned.
type Status string

const (
	StatusActive    Status = "active"
	StatusFinished  Status = "finished"
	StatusAbandoned Status = "abandoned"
)

// Result is a game outcome relative to the player reporting it.
type Result string

const (
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
	ResultDraw Result = "draw"
)

// ValidResult reports whether s is a recognized outcome token.
func ValidResult(s string) bool {
	switch Result(s) {
	case ResultWin, ResultLoss, ResultDraw:
		return true
	}
	return false
}

var (
	// ErrNotYourTurn is returned when a move comes from the participant
	// who does not hold the turn.
	ErrNotYourTurn = errors.New("not your turn")

	// ErrInvalidSession is returned for operations on a session that is
	// no longer active or does not involve the caller.
	ErrInvalidSession = errors.New("invalid session")
)

// Participant identifies one side of a session.
type Participant struct {
	ID   string
	Name string
}

// Move is one recorded move: who moved, the verbatim payload, and when.
type Move struct {
	PlayerID string
	Payload  json.RawMessage
	At       time.Time
}

// Record is the frozen summary of a session handed to the statistics store
// exactly once, at finalization.
type Record struct {
	GameID     string
	GameType   string
	White      Participant
	Black      Participant
	WinnerID   string // empty means draw or unresolved
	Status     Status
	Moves      []Move
	StartedAt  time.Time
	FinishedAt time.Time
}

// Session is one in-progress paired game. White is always the participant
// that was queued first. All state transitions hold the session mutex, so
// concurrent moves and a racing disconnect serialize per session.
type Session struct {
	ID       string
	GameType string
	White    Participant
	Black    Participant

	mu        sync.Mutex
	turn      string // player ID of the current turn holder
	moves     []Move
	status    Status
	createdAt time.Time
}

// NewSession pairs two players into an active session. The first participant
// takes white and moves first.
func NewSession(gameType string, white, black Participant) *Session {
	return &Session{
		ID:       uuid.NewString(),
		GameType: gameType,
		White:    white,
		Black:    black,

		turn:      white.ID,
		status:    StatusActive,
		createdAt: time.Now(),
	}
}

// HasParticipant reports whether the player belongs to this session.
func (s *Session) HasParticipant(playerID string) bool {
	return playerID == s.White.ID || playerID == s.Black.ID
}

// Opponent returns the other participant. The caller must belong to the
// session.
func (s *Session) Opponent(playerID string) Participant {
	if playerID == s.White.ID {
		return s.Black
	}
	return s.White
}

// Color returns the board role held by the given participant.
func (s *Session) Color(playerID string) color.Color {
	if playerID == s.White.ID {
		return color.White
	}
	return color.Black
}

// CurrentTurn returns the player ID holding the turn.
func (s *Session) CurrentTurn() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn
}

// State returns the current lifecycle state.
func (s *Session) State() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// MoveCount returns the number of recorded moves.
func (s *Session) MoveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.moves)
}

// SubmitMove records a move from playerID and flips the turn. It returns the
// opponent so the caller can notify them. The payload is stored and relayed
// verbatim. Fails with ErrInvalidSession if the session is no longer active
// and ErrNotYourTurn if playerID does not hold the turn; neither failure
// changes any state.
func (s *Session) SubmitMove(playerID string, payload json.RawMessage) (Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusActive {
		return Participant{}, ErrInvalidSession
	}
	if s.turn != playerID {
		return Participant{}, ErrNotYourTurn
	}

	s.moves = append(s.moves, Move{
		PlayerID: playerID,
		Payload:  payload,
		At:       time.Now(),
	})

	opponent := s.Opponent(playerID)
	s.turn = opponent.ID

	return opponent, nil
}

// Finish ends the session with an explicit result reported by playerID.
// The winner is computed relative to the reporter: win means the reporter,
// loss means the opponent, draw means nobody. Returns the finalization
// record, or ErrInvalidSession if the session already reached a terminal
// state.
func (s *Session) Finish(playerID string, result Result) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusActive {
		return nil, ErrInvalidSession
	}

	var winnerID string
	switch result {
	case ResultWin:
		winnerID = playerID
	case ResultLoss:
		winnerID = s.Opponent(playerID).ID
	case ResultDraw:
		winnerID = ""
	default:
		return nil, ErrInvalidSession
	}

	s.status = StatusFinished
	return s.record(winnerID), nil
}

// Abandon ends the session because a participant disconnected. The winner
// stays unset. A session that already reached a terminal state ignores the
// call, which makes the finish/disconnect race safe: only the first
// finalization produces a record, so statistics are written once.
func (s *Session) Abandon() (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusActive {
		return nil, ErrInvalidSession
	}

	s.status = StatusAbandoned
	return s.record(""), nil
}

// record freezes the session into its finalization form. Caller holds mu.
func (s *Session) record(winnerID string) *Record {
	moves := make([]Move, len(s.moves))
	copy(moves, s.moves)

	return &Record{
		GameID:     s.ID,
		GameType:   s.GameType,
		White:      s.White,
		Black:      s.Black,
		WinnerID:   winnerID,
		Status:     s.status,
		Moves:      moves,
		StartedAt:  s.createdAt,
		FinishedAt: time.Now(),
	}
}
