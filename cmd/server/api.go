// Package main is the entry point of the application
package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"matchhub/pkg/engine"
)

// handlePlayerStats serves GET /api/players/{id}: lifetime record, per-type
// statistics and recent games.
func (app *application) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	playerID := strings.TrimPrefix(r.URL.Path, "/api/players/")
	if playerID == "" || strings.Contains(playerID, "/") {
		http.Error(w, "missing player id", http.StatusBadRequest)
		return
	}

	summary, err := app.Store.PlayerSummary(r.Context(), playerID)
	if err != nil {
		app.Logger.Error("loading player summary", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if summary == nil {
		http.Error(w, "player not found", http.StatusNotFound)
		return
	}

	app.writeJSON(w, summary)
}

// handleLeagueTable serves GET /api/league?limit=N.
func (app *application) handleLeagueTable(w http.ResponseWriter, r *http.Request) {
	standings, err := app.Store.LeagueTable(r.Context(), app.queryLimit(r))
	if err != nil {
		app.Logger.Error("loading league table", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	app.writeJSON(w, map[string]interface{}{"standings": standings})
}

// handleLeaderboard serves GET /api/leaderboard/{gameType}?limit=N.
func (app *application) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	gameType := strings.TrimPrefix(r.URL.Path, "/api/leaderboard/")
	if gameType == "" || strings.Contains(gameType, "/") {
		http.Error(w, "missing game type", http.StatusBadRequest)
		return
	}

	board, err := app.Store.GameTypeLeaderboard(r.Context(), gameType, app.queryLimit(r))
	if err != nil {
		app.Logger.Error("loading leaderboard", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	app.writeJSON(w, map[string]interface{}{"game_type": gameType, "leaderboard": board})
}

// handleEngineStatus reports the move-suggestion backend's status, or that
// no backend is configured.
func (app *application) handleEngineStatus(w http.ResponseWriter, r *http.Request) {
	status, err := app.Engine.GetStatus(r.Context())
	if errors.Is(err, engine.ErrUnavailable) {
		app.writeJSON(w, map[string]interface{}{"status": "unavailable", "ready": false})
		return
	}
	if err != nil {
		app.Logger.Error("querying engine status", zap.Error(err))
		http.Error(w, "engine unreachable", http.StatusBadGateway)
		return
	}

	app.writeJSON(w, status)
}

func (app *application) queryLimit(r *http.Request) int {
	limit := app.Config.QueryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n < limit {
			limit = n
		}
	}
	return limit
}

func (app *application) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.Logger.Error("encoding response", zap.Error(err))
	}
}
