// Package main is the entry point of the application
package main

import (
	"net/http"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", app.handleHealth)
	mux.HandleFunc("/ws", app.handleWebSocket)

	// Read-only statistics surface, separate from the connection protocol
	mux.HandleFunc("/api/players/", app.authenticate(app.handlePlayerStats))
	mux.HandleFunc("/api/league", app.authenticate(app.handleLeagueTable))
	mux.HandleFunc("/api/leaderboard/", app.authenticate(app.handleLeaderboard))
	mux.HandleFunc("/api/engine/status", app.authenticate(app.handleEngineStatus))

	return mux
}
