package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/avramidis/dealscout/internal/events"
	"github.com/avramidis/dealscout/internal/modules/leads"
)

type fakeQueueSource struct {
	state leads.QueueState
}

func (f *fakeQueueSource) State() leads.QueueState { return f.state }

type testFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func TestHubSendsSnapshotThenEvents(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	manager := events.NewManager(bus, zerolog.Nop())

	source := &fakeQueueSource{state: leads.NewQueueState(nil, nil)}
	hub := NewHub(bus, source, zerolog.Nop())
	t.Cleanup(hub.Close)

	ts := httptest.NewServer(http.HandlerFunc(hub.HandleConnect))
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	var snapshot testFrame
	require.NoError(t, wsjson.Read(ctx, conn, &snapshot))
	assert.Equal(t, "queue_snapshot", snapshot.Type)

	// reading the snapshot guarantees the client is registered
	manager.Emit(events.QueueChanged, "leads", map[string]interface{}{"total_items": 3})

	var frame testFrame
	require.NoError(t, wsjson.Read(ctx, conn, &frame))
	assert.Equal(t, string(events.QueueChanged), frame.Type)
}

func TestHubCloseDisconnectsClients(t *testing.T) {
	hub := NewHub(nil, nil, zerolog.Nop())

	ts := httptest.NewServer(http.HandlerFunc(hub.HandleConnect))
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	hub.Close()
	assert.Equal(t, 0, hub.ClientCount())

	_, _, readErr := conn.Read(ctx)
	assert.Error(t, readErr, "server close terminates the connection")
}
