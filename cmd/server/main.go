// Package main is the entry point of the application
package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"matchhub/internal/auth"
	"matchhub/pkg/config"
	"matchhub/pkg/engine"
	"matchhub/pkg/events"
	"matchhub/pkg/server"
	"matchhub/pkg/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,

	CheckOrigin: func(r *http.Request) bool {
		allowed := os.Getenv("FRONTEND_PATH")
		return allowed == "" || allowed == r.Header.Get("Origin")
	},
}

// application encapsulates global dependencies
type application struct {
	Auth      *auth.APIKeyAuth
	Logger    *zap.Logger
	Config    *config.Config
	Publisher *events.Publisher
	Store     store.Store
	Engine    *engine.Client
	Hub       *server.Hub
	Server    *http.Server

	StartTime time.Time
}

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	port := flag.String("port", "8080", "server port")
	flag.Parse()

	// Initialize logger
	logger := initLogger(*debug)
	defer logger.Sync()

	// Missing .env is fine; the environment may already be populated.
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", zap.Error(err))
	}

	cfg := config.Load(*debug, *port)

	// Initialize event publisher with a logging observer
	publisher := events.NewPublisher()
	publisher.SubscribeAll(func(event events.Event) {
		logger.Debug("event",
			zap.String("type", string(event.Type)),
			zap.String("game_id", event.GameID),
			zap.String("player_id", event.PlayerID))
	})

	// Initialize statistics store
	st, err := store.NewSQLiteStore(cfg.DatabasePath, logger)
	if err != nil {
		logger.Fatal("opening statistics store", zap.Error(err))
	}

	// Engine proxy is optional; without ENGINE_URL it stays unavailable.
	eng := engine.NewClient(cfg.EngineURL, logger)
	if !eng.Available() {
		logger.Info("engine backend not configured")
	}

	hub := server.NewHub(cfg, st, publisher, logger)

	app := &application{
		Auth:      auth.NewAPIKeyAuth(cfg.APIKeys),
		Logger:    logger,
		Config:    cfg,
		Publisher: publisher,
		Store:     st,
		Engine:    eng,
		Hub:       hub,
		StartTime: time.Now(),
	}

	if err := app.serve(); err != nil {
		logger.Fatal("error serving", zap.Error(err))
	}
}

func initLogger(debug bool) *zap.Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	return logger
}

// Shutdown cleans up resources
func (app *application) Shutdown() {
	if err := app.Store.Close(); err != nil {
		app.Logger.Error("closing statistics store", zap.Error(err))
	}

	app.Logger.Info("All components shut down successfully")
}
