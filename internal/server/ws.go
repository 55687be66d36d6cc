package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/avramidis/dealscout/internal/events"
	"github.com/avramidis/dealscout/internal/modules/leads"
)

const wsWriteTimeout = 5 * time.Second

// QueueStateSource provides the queue snapshot sent to connecting clients
type QueueStateSource interface {
	State() leads.QueueState
}

// wsFrame is the JSON frame pushed to dashboard clients
type wsFrame struct {
	Type      string      `json:"type"`
	Source    string      `json:"source,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub fans bus events out to connected dashboard clients. Each client gets
// the current queue state on connect, then live event frames. A client that
// can't keep up within the write timeout is dropped.
type Hub struct {
	queueSource QueueStateSource
	log         zerolog.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	closed  bool
}

// NewHub creates a hub and subscribes it to the event bus. bus may be nil in
// tests; the hub then only serves connect-time snapshots.
func NewHub(bus *events.Bus, queueSource QueueStateSource, log zerolog.Logger) *Hub {
	h := &Hub{
		queueSource: queueSource,
		clients:     make(map[*websocket.Conn]struct{}),
		log:         log.With().Str("component", "ws_hub").Logger(),
	}

	if bus != nil {
		bus.SubscribeAll(h.onEvent)
	}

	return h
}

// HandleConnect handles GET /api/ws
func (h *Hub) HandleConnect(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// the dashboard may be served from a different origin in dev
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket accept failed")
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	h.clients[conn] = struct{}{}
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.log.Debug().Int("clients", clientCount).Msg("Websocket client connected")

	// initial snapshot so the dashboard renders without a REST round trip
	if h.queueSource != nil {
		h.send(conn, wsFrame{
			Type:      "queue_snapshot",
			Data:      h.queueSource.State(),
			Timestamp: time.Now(),
		})
	}

	// block reading until the client goes away; clients never send frames
	ctx := r.Context()
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			break
		}
	}

	h.remove(conn)
	conn.Close(websocket.StatusNormalClosure, "")
	h.log.Debug().Msg("Websocket client disconnected")
}

// onEvent forwards a bus event to every connected client
func (h *Hub) onEvent(event *events.Event) {
	frame := wsFrame{
		Type:      string(event.Type),
		Source:    event.Source,
		Timestamp: event.Timestamp,
	}
	if event.TypedData != nil {
		frame.Data = event.TypedData
	} else {
		frame.Data = event.Data
	}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		h.send(conn, frame)
	}
}

// send writes one frame with a timeout; slow clients are dropped
func (h *Hub) send(conn *websocket.Conn, frame wsFrame) {
	ctx, cancel := context.WithTimeout(context.Background(), wsWriteTimeout)
	defer cancel()

	if err := wsjson.Write(ctx, conn, frame); err != nil {
		h.log.Debug().Err(err).Msg("Dropping slow websocket client")
		h.remove(conn)
		conn.Close(websocket.StatusPolicyViolation, "write timeout")
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects all clients and refuses new ones
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.clients = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
}
