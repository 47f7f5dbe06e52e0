package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatlens/chatlens/internal/logger"
)

func waitClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != want && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	require.Equal(t, want, hub.ClientCount())
}

func TestHub_BroadcastToConnectedClient(t *testing.T) {
	hub := NewHub(logger.Get())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	waitClients(t, hub, 1)

	hub.Broadcast(TaskProgressEvent("abc", "running", 40.0, "Parsing single file"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event struct {
		Type    string              `json:"type"`
		Payload TaskProgressPayload `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, EventTaskProgress, event.Type)
	assert.Equal(t, "abc", event.Payload.TaskID)
	assert.Equal(t, 40.0, event.Payload.Progress)
}

func TestHub_DropsDisconnectedClients(t *testing.T) {
	hub := NewHub(logger.Get())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	waitClients(t, hub, 1)

	conn.Close()

	// A write to the closed connection evicts it.
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() > 0 && time.Now().Before(deadline) {
		hub.Broadcast(map[string]string{"ping": "pong"})
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_BroadcastWithoutClients(t *testing.T) {
	hub := NewHub(logger.Get())
	assert.Equal(t, 0, hub.ClientCount())
	hub.Broadcast(map[string]string{"type": "noop"})
}
