package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startHub(t *testing.T, config *HubConfig) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(config, zap.NewNop())
	go hub.Run()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	t.Cleanup(func() {
		srv.Close()
		hub.Stop()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	return websocket.DefaultDialer.Dial(url, header)
}

func TestHub(t *testing.T) {
	t.Run("BroadcastsDetections", func(t *testing.T) {
		hub, srv := startHub(t, &HubConfig{BroadcastDetections: true})

		conn, _, err := dial(t, srv, nil)
		require.NoError(t, err)
		defer conn.Close()

		require.Eventually(t, func() bool {
			return hub.GetStats().ActiveConnections == 1
		}, 2*time.Second, 10*time.Millisecond)

		hub.BroadcastEvent(Event{
			Type:      EventTypeDetection,
			Timestamp: time.Now(),
			Data:      DetectionEvent{BadWords: []string{"bad"}, Found: 2, Method: "stars"},
		})

		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var got map[string]interface{}
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, "detection", got["type"])

		data := got["data"].(map[string]interface{})
		assert.Equal(t, float64(2), data["found"])
	})

	t.Run("DisabledEventsAreDropped", func(t *testing.T) {
		hub := NewHub(&HubConfig{}, zap.NewNop())
		hub.BroadcastEvent(Event{Type: EventTypeDetection})
		assert.Len(t, hub.broadcast, 0)
	})

	t.Run("RequiresCredentials", func(t *testing.T) {
		_, srv := startHub(t, &HubConfig{Username: "admin", Password: "secret"})

		_, resp, err := dial(t, srv, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		header := http.Header{}
		req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
		req.SetBasicAuth("admin", "secret")
		header.Set("Authorization", req.Header.Get("Authorization"))

		conn, _, err := dial(t, srv, header)
		require.NoError(t, err)
		conn.Close()
	})

	t.Run("Subscription", func(t *testing.T) {
		hub := NewHub(&HubConfig{BroadcastDetections: true}, zap.NewNop())
		client := &Client{ID: "c1", Send: make(chan Event, 1)}
		hub.clients[client] = true

		hub.handleClientMessage(client, ClientMessage{Type: "subscribe", Events: []EventType{EventTypeConnection}})
		hub.broadcastEvent(Event{Type: EventTypeDetection})
		assert.Len(t, client.Send, 0)

		hub.broadcastEvent(Event{Type: EventTypeConnection})
		assert.Len(t, client.Send, 1)
	})
}

func TestHubStopTwice(t *testing.T) {
	hub := NewHub(&HubConfig{}, zap.NewNop())
	stopped := make(chan struct{})
	go func() {
		hub.Run()
		close(stopped)
	}()

	require.NotPanics(t, func() {
		hub.Stop()
		hub.Stop()
	})

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
}
