// Package messages defines the wire protocol spoken over the websocket.
// Inbound frames are flat JSON objects carrying a "type" discriminator;
// Decode turns a raw frame into exactly one of the closed variant set below.
package messages

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed is returned when a frame is not valid JSON or is missing
// required fields. The connection stays open; the client gets an error reply.
var ErrMalformed = errors.New("malformed message")

// Inbound is the closed set of client messages. Exactly the types in this
// file implement it.
type Inbound interface {
	inbound()
}

// Register must be the first message on every connection.
type Register struct {
	Name string `json:"name"`
}

// Join asks the matchmaker for an opponent.
type Join struct {
	GameType string `json:"game_type"`
}

// Move submits a move in the sender's active game. The payload is opaque to
// the server and relayed verbatim; no legality checking happens here.
type Move struct {
	GameID string          `json:"game_id"`
	Move   json.RawMessage `json:"move"`
}

// Chat relays a text message to the opponent. Chat is never persisted.
type Chat struct {
	GameID  string `json:"game_id"`
	Message string `json:"message"`
}

// GameEnd reports the outcome of the sender's game. Result is one of
// "win", "loss" or "draw", always relative to the sender.
type GameEnd struct {
	GameID   string `json:"game_id"`
	WinnerID string `json:"winner_id"`
	Result   string `json:"result"`
}

// Ping is an advisory liveness probe answered with pong.
type Ping struct{}

func (Register) inbound() {}
func (Join) inbound()     {}
func (Move) inbound()     {}
func (Chat) inbound()     {}
func (GameEnd) inbound()  {}
func (Ping) inbound()     {}

// envelope probes only the discriminator before the full decode.
type envelope struct {
	Type string `json:"type"`
}

// Decode parses a raw frame into its inbound variant. Unknown discriminators
// and invalid JSON both come back wrapped in ErrMalformed so the caller can
// answer with a protocol error and keep reading.
func Decode(raw []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var (
		msg Inbound
		err error
	)

	switch env.Type {
	case "register":
		var m Register
		err = json.Unmarshal(raw, &m)
		msg = m
	case "join":
		var m Join
		err = json.Unmarshal(raw, &m)
		msg = m
	case "move":
		var m Move
		err = json.Unmarshal(raw, &m)
		msg = m
	case "chat":
		var m Chat
		err = json.Unmarshal(raw, &m)
		msg = m
	case "game_end":
		var m GameEnd
		err = json.Unmarshal(raw, &m)
		msg = m
	case "ping":
		msg = Ping{}
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrMalformed, env.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return msg, nil
}
