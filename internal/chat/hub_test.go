package chat

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"CapIot.dashboard/internal/models"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	go hub.Run(ctx)

	srv := httptest.NewServer(NewHandler(hub, nil))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) models.ChatMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg models.ChatMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestMessageReachesEveryClient(t *testing.T) {
	hub, url := startHub(t)
	alice := dial(t, url)
	bob := dial(t, url)
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, 2*time.Second, 10*time.Millisecond)

	sent := models.ChatMessage{Message: "hello", ID: "alice"}
	require.NoError(t, alice.WriteJSON(sent))

	assert.Equal(t, sent, readMessage(t, alice), "sender receives its own message")
	assert.Equal(t, sent, readMessage(t, bob))
}

func TestInvalidPayloadIsDropped(t *testing.T) {
	hub, url := startHub(t)
	alice := dial(t, url)
	bob := dial(t, url)
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("not json")))
	next := models.ChatMessage{Message: "still here", ID: "alice"}
	require.NoError(t, alice.WriteJSON(next))

	assert.Equal(t, next, readMessage(t, bob))
}

func TestClosedClientIsUnregistered(t *testing.T) {
	hub, url := startHub(t)
	alice := dial(t, url)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, alice.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubStopsOnCancel(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	assert.Equal(t, 0, hub.Clients())
}
