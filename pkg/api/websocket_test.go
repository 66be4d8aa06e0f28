package api

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialRender(t *testing.T) (*websocket.Conn, *Hub, context.CancelFunc) {
	t.Helper()

	server := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	go server.Hub().Run(ctx)

	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/render"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn, server.Hub(), cancel
}

func exchange(t *testing.T, conn *websocket.Conn, msg Message) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.WriteJSON(msg))

	var reply Message
	require.NoError(t, conn.ReadJSON(&reply))
	return reply
}

func TestWebSocketRender(t *testing.T) {
	conn, _, cancel := dialRender(t)
	defer cancel()

	reply := exchange(t, conn, Message{Type: MessageTypeRender, ID: "m1", Content: "<!channel> _look_"})
	assert.Equal(t, MessageTypeRendered, reply.Type)
	assert.Equal(t, "m1", reply.ID)
	assert.Equal(t, `<p><span class="chat-link"><!channel></span> <i>look</i></p>`, reply.Content)
	assert.False(t, reply.Timestamp.IsZero())
}

func TestWebSocketPingAndErrors(t *testing.T) {
	conn, _, cancel := dialRender(t)
	defer cancel()

	reply := exchange(t, conn, Message{Type: MessageTypePing, ID: "p1"})
	assert.Equal(t, MessageTypePong, reply.Type)
	assert.Equal(t, "p1", reply.ID)

	reply = exchange(t, conn, Message{Type: "search", ID: "x"})
	assert.Equal(t, MessageTypeError, reply.Type)
	assert.Contains(t, reply.Error, "search")

	reply = exchange(t, conn, Message{Type: MessageTypeRender, ID: "big", Content: strings.Repeat("a", MaxTextLength+1)})
	assert.Equal(t, MessageTypeError, reply.Type)
}

func TestWebSocketHubShutdown(t *testing.T) {
	conn, hub, cancel := dialRender(t)

	exchange(t, conn, Message{Type: MessageTypePing, ID: "p"})
	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	cancel()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived),
		"unexpected error: %v", err)
}
