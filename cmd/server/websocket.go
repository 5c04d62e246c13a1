// Package main is the entry point of the application
package main

import (
	"net/http"

	"go.uber.org/zap"

	"matchhub/pkg/server"
)

// handleWebSocket upgrades the connection and starts its pumps. Everything
// after the upgrade, registration included, happens over the socket.
func (app *application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.Logger.Error("Failed to upgrade to WebSocket", zap.Error(err))
		return
	}

	conn := server.NewConnection(ws, app.Hub, app.Logger)

	app.Logger.Info("WebSocket connection established",
		zap.String("remote_addr", r.RemoteAddr))

	go conn.WritePump()
	go conn.ReadPump()
}
