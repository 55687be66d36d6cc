// Package events provides a typed publish/subscribe event bus used to decouple
// modules. Repositories and services emit events; the websocket hub and
// background jobs subscribe to them.
package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType identifies a kind of event on the bus
type EventType string

const (
	LeadCreated       EventType = "lead_created"
	LeadUpdated       EventType = "lead_updated"
	LeadDeleted       EventType = "lead_deleted"
	LeadStatusChanged EventType = "lead_status_changed"
	PropertyUpdated   EventType = "property_updated"
	ScoreRecalculated EventType = "score_recalculated"
	QueueChanged      EventType = "queue_changed"
	SettingsChanged   EventType = "settings_changed"
	JobCompleted      EventType = "job_completed"
	BackupCompleted   EventType = "backup_completed"
)

// Event is a single occurrence on the bus.
// Data carries a loosely-typed payload for subscribers that only forward it
// (the websocket hub); TypedData carries the structured payload when the
// emitter used EmitTyped.
type Event struct {
	Type      EventType              `json:"type"`
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data,omitempty"`
	TypedData EventData              `json:"typed_data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Handler is a subscriber callback. Handlers run synchronously on the
// emitter's goroutine and must not block.
type Handler func(event *Event)

// Bus is a synchronous in-process event bus
type Bus struct {
	mu          sync.RWMutex
	handlers    map[EventType][]Handler
	allHandlers []Handler
	log         zerolog.Logger
}

// NewBus creates a new event bus
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
		log:      log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// SubscribeAll registers a handler that receives every event.
// Used by the websocket hub to forward events to dashboard clients.
func (b *Bus) SubscribeAll(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.allHandlers = append(b.allHandlers, handler)
}

// Publish delivers an event to all matching handlers
func (b *Bus) Publish(event *Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.mu.RLock()
	typed := make([]Handler, len(b.handlers[event.Type]))
	copy(typed, b.handlers[event.Type])
	all := make([]Handler, len(b.allHandlers))
	copy(all, b.allHandlers)
	b.mu.RUnlock()

	for _, h := range typed {
		b.dispatch(h, event)
	}
	for _, h := range all {
		b.dispatch(h, event)
	}
}

// dispatch invokes a handler, recovering panics so one bad subscriber cannot
// take down the emitter.
func (b *Bus) dispatch(h Handler, event *Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Interface("panic", r).
				Str("event_type", string(event.Type)).
				Msg("Event handler panicked")
		}
	}()
	h(event)
}

// Manager provides the emit side of the bus with logging
type Manager struct {
	bus *Bus
	log zerolog.Logger
}

// NewManager creates a new event manager
func NewManager(bus *Bus, log zerolog.Logger) *Manager {
	return &Manager{
		bus: bus,
		log: log.With().Str("component", "event_manager").Logger(),
	}
}

// Emit publishes an event with a loosely-typed payload
func (m *Manager) Emit(eventType EventType, source string, data map[string]interface{}) {
	m.log.Debug().
		Str("event_type", string(eventType)).
		Str("source", source).
		Msg("Emitting event")

	m.bus.Publish(&Event{
		Type:      eventType,
		Source:    source,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// EmitTyped publishes an event with a structured payload.
// The event type is taken from the data to keep the two consistent.
func (m *Manager) EmitTyped(source string, data EventData) {
	m.log.Debug().
		Str("event_type", string(data.EventType())).
		Str("source", source).
		Msg("Emitting typed event")

	m.bus.Publish(&Event{
		Type:      data.EventType(),
		Source:    source,
		TypedData: data,
		Timestamp: time.Now(),
	})
}
