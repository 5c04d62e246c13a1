// Package engine talks to the external move-suggestion backend. The server
// never runs an engine itself; it only consumes the backend's small
// request/response contract, and the single-player suggestion workflow lives
// entirely on the client side.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrUnavailable is returned by every call on a client that has no backend
// configured. Callers must check for it instead of assuming an engine exists.
var ErrUnavailable = errors.New("engine backend not configured")

// SuggestRequest carries an opaque position payload plus strength parameters
// to the backend.
type SuggestRequest struct {
	GameType  string          `json:"game_type,omitempty"`
	Position  json.RawMessage `json:"position,omitempty"`
	Moves     []string        `json:"moves,omitempty"`
	BoardSize int             `json:"board_size,omitempty"`
	Komi      float64         `json:"komi,omitempty"`
	Strength  string          `json:"strength,omitempty"`
}

// Suggestion is the backend's answer: a move plus descriptive metadata.
type Suggestion struct {
	Success  bool   `json:"success"`
	Move     string `json:"move"`
	Engine   string `json:"engine"`
	Strength string `json:"strength"`
	Error    string `json:"error,omitempty"`
}

// Status is the backend's liveness and identity report.
type Status struct {
	Status   string `json:"status"`
	Engine   string `json:"engine"`
	Version  string `json:"version"`
	Strength string `json:"strength"`
	Ready    bool   `json:"ready"`
}

// Client is the capability handle handed to whoever needs suggestions. A
// zero base URL puts it in the unavailable state.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *zap.Logger
}

// NewClient builds a client for the backend at baseURL. An empty baseURL is
// valid and yields an unavailable client.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// Available reports whether a backend is configured.
func (c *Client) Available() bool {
	return c.baseURL != ""
}

// SuggestMove submits a position and returns the backend's suggested move.
func (c *Client) SuggestMove(ctx context.Context, req SuggestRequest) (*Suggestion, error) {
	if !c.Available() {
		return nil, ErrUnavailable
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding suggest request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/move", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("engine request: %w", err)
	}
	defer resp.Body.Close()

	var suggestion Suggestion
	if err := json.NewDecoder(resp.Body).Decode(&suggestion); err != nil {
		return nil, fmt.Errorf("decoding engine response: %w", err)
	}

	if !suggestion.Success {
		return nil, fmt.Errorf("engine error: %s", suggestion.Error)
	}

	c.logger.Debug("engine suggestion",
		zap.String("move", suggestion.Move),
		zap.String("engine", suggestion.Engine))
	return &suggestion, nil
}

// GetStatus asks the backend for its liveness and identity report.
func (c *Client) GetStatus(ctx context.Context) (*Status, error) {
	if !c.Available() {
		return nil, ErrUnavailable
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/status", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("engine status request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("engine status: unexpected HTTP %d", resp.StatusCode)
	}

	var status Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decoding engine status: %w", err)
	}
	return &status, nil
}
