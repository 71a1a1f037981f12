package notifications

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub()

	a, err := hub.Register("asha", nil)
	require.NoError(t, err)
	b, err := hub.Register("ravi", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, hub.Count())

	hub.UnregisterClient(a)
	hub.UnregisterClient(a)
	assert.Equal(t, 1, hub.Count())

	_, open := <-a.Send
	assert.False(t, open, "send channel is closed on unregister")

	hub.UnregisterClient(b)
	assert.Equal(t, 0, hub.Count())
}

func TestHub_PerOperatorLimit(t *testing.T) {
	hub := NewHub()
	for i := 0; i < maxConnsPerOperator; i++ {
		_, err := hub.Register("asha", nil)
		require.NoError(t, err)
	}
	_, err := hub.Register("asha", nil)
	assert.ErrorIs(t, err, ErrOperatorFull)

	_, err = hub.Register("ravi", nil)
	assert.NoError(t, err)
}

func TestHub_BroadcastAllDropsForFullBuffers(t *testing.T) {
	hub := NewHub()
	fast, err := hub.Register("asha", nil)
	require.NoError(t, err)
	slow, err := hub.Register("ravi", nil)
	require.NoError(t, err)

	for i := 0; i < sendBuffer; i++ {
		slow.Send <- []byte("filler")
	}

	hub.BroadcastAll([]byte(`{"type":"status_changed"}`))

	select {
	case msg := <-fast.Send:
		assert.JSONEq(t, `{"type":"status_changed"}`, string(msg))
	default:
		t.Fatal("fast client did not receive the event")
	}
	assert.Len(t, slow.Send, sendBuffer)
}

func TestHub_ShutdownRejectsNewClients(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register("asha", nil)
	require.NoError(t, err)

	require.NoError(t, hub.Shutdown(context.Background()))
	require.NoError(t, hub.Shutdown(context.Background()))

	_, open := <-c.Send
	assert.False(t, open)
	assert.Equal(t, 0, hub.Count())

	hub.UnregisterClient(c)

	_, err = hub.Register("asha", nil)
	assert.ErrorIs(t, err, ErrHubClosed)
}

func TestHub_WiredToNotifier(t *testing.T) {
	rdb := newTestRedis(t)
	n := NewNotifier(rdb)
	hub := NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, n))

	c, err := hub.Register("asha", nil)
	require.NoError(t, err)

	require.NoError(t, n.PublishModeration(context.Background(), ModerationEvent{Kind: "pendown", Status: "rejected"}))

	select {
	case msg := <-c.Send:
		assert.Contains(t, string(msg), `"status":"rejected"`)
	case <-time.After(time.Second):
		t.Fatal("event was not forwarded to the hub")
	}
}

func TestHub_WebsocketDelivery(t *testing.T) {
	hub := NewHub()

	app := fiber.New()
	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		client, err := hub.Register("asha", conn)
		if err != nil {
			_ = conn.Close()
			return
		}
		go client.WritePump()
		client.ReadPump()
	}))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	defer func() { _ = app.Shutdown() }()

	conn, _, err := gws.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws", nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	hub.BroadcastAll([]byte(`{"type":"status_changed","kind":"poem"}`))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	msgType, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, gws.TextMessage, msgType)
	assert.JSONEq(t, `{"type":"status_changed","kind":"poem"}`, string(msg))

	require.NoError(t, conn.WriteMessage(gws.CloseMessage, gws.FormatCloseMessage(gws.CloseNormalClosure, "")))
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, 10*time.Millisecond)
}
