// Package events is a small in-process pub/sub used for lifecycle observation
package events

import "sync"

// EventType represents the type of event
type EventType string

// Lifecycle events published by the hub
const (
	EventPlayerRegistered EventType = "PLAYER_REGISTERED"
	EventGameStarted      EventType = "GAME_STARTED"
	EventGameFinished     EventType = "GAME_FINISHED"
	EventGameAbandoned    EventType = "GAME_ABANDONED"
	EventConnectionClosed EventType = "CONNECTION_CLOSED"
)

// EventAll subscribes a handler to every event type.
const EventAll EventType = "*"

// Event represents an event in the system
type Event struct {
	Type     EventType
	GameID   string // Optional, empty for non-game events
	PlayerID string // Optional
	Payload  interface{}
}

// Handler is a function that processes events
type Handler func(event Event)

// Publisher is the central event publisher. Handlers run on their own
// goroutines; nothing in the coordination path waits on a subscriber.
type Publisher struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Handler
}

// NewPublisher creates a new event publisher
func NewPublisher() *Publisher {
	return &Publisher{
		subscribers: make(map[EventType][]Handler),
	}
}

// Subscribe registers a handler for a specific event type
func (p *Publisher) Subscribe(eventType EventType, handler Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.subscribers[eventType] = append(p.subscribers[eventType], handler)
}

// SubscribeAll registers a handler for all event types
func (p *Publisher) SubscribeAll(handler Handler) {
	p.Subscribe(EventAll, handler)
}

// Publish broadcasts an event to all subscribers, including catch-all handlers
func (p *Publisher) Publish(event Event) {
	p.mu.RLock()
	handlers := p.subscribers[event.Type]
	allHandlers := p.subscribers[EventAll]
	p.mu.RUnlock()

	for _, handler := range handlers {
		go handler(event)
	}
	for _, handler := range allHandlers {
		go handler(event)
	}
}
