package messages

import (
	"encoding/json"

	"matchhub/internal/color"
)

// Outbound messages are flat JSON objects; the Type field is fixed by the
// constructor so handlers can't send a mislabeled frame.

// Registered confirms registration and hands the client its identity.
type Registered struct {
	Type     string `json:"type"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
}

func NewRegistered(playerID, name string) Registered {
	return Registered{Type: "registered", PlayerID: playerID, Name: name}
}

// Waiting tells a joiner there is no opponent yet.
type Waiting struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewWaiting() Waiting {
	return Waiting{Type: "waiting", Message: "Waiting for opponent..."}
}

// GameStarted notifies one participant of a fresh pairing.
type GameStarted struct {
	Type       string      `json:"type"`
	GameID     string      `json:"game_id"`
	GameType   string      `json:"game_type"`
	Opponent   string      `json:"opponent"`
	OpponentID string      `json:"opponent_id"`
	YourColor  color.Color `json:"your_color"`
	YourTurn   bool        `json:"your_turn"`
}

// MoveApplied acknowledges the mover's own move.
type MoveApplied struct {
	Type     string          `json:"type"`
	GameID   string          `json:"game_id"`
	Move     json.RawMessage `json:"move"`
	YourTurn bool            `json:"your_turn"`
}

func NewMoveApplied(gameID string, move json.RawMessage) MoveApplied {
	return MoveApplied{Type: "move_applied", GameID: gameID, Move: move, YourTurn: false}
}

// OpponentMove relays a move to the other participant.
type OpponentMove struct {
	Type     string          `json:"type"`
	GameID   string          `json:"game_id"`
	Move     json.RawMessage `json:"move"`
	YourTurn bool            `json:"your_turn"`
}

func NewOpponentMove(gameID string, move json.RawMessage) OpponentMove {
	return OpponentMove{Type: "opponent_move", GameID: gameID, Move: move, YourTurn: true}
}

// ChatRelay forwards a chat line verbatim.
type ChatRelay struct {
	Type    string `json:"type"`
	GameID  string `json:"game_id"`
	From    string `json:"from"`
	Message string `json:"message"`
}

func NewChatRelay(gameID, from, message string) ChatRelay {
	return ChatRelay{Type: "chat", GameID: gameID, From: from, Message: message}
}

// OpponentDisconnected tells the surviving participant the session is over.
type OpponentDisconnected struct {
	Type    string `json:"type"`
	GameID  string `json:"game_id"`
	Message string `json:"message"`
}

func NewOpponentDisconnected(gameID string) OpponentDisconnected {
	return OpponentDisconnected{
		Type:    "opponent_disconnected",
		GameID:  gameID,
		Message: "Your opponent disconnected",
	}
}

// GameSaved confirms the finalized game reached the statistics store.
type GameSaved struct {
	Type   string `json:"type"`
	GameID string `json:"game_id"`
	Result string `json:"result"`
}

func NewGameSaved(gameID, result string) GameSaved {
	return GameSaved{Type: "game_saved", GameID: gameID, Result: result}
}

// Pong answers a ping.
type Pong struct {
	Type string `json:"type"`
}

func NewPong() Pong {
	return Pong{Type: "pong"}
}

// Error carries a non-fatal protocol or precondition failure.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewError(message string) Error {
	return Error{Type: "error", Message: message}
}
