package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aouyang1/labboard/api/models"
	"github.com/aouyang1/labboard/board"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T, onInput func(models.InputMessage)) (*Hub, string) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, onInput)
	}))
	t.Cleanup(func() {
		cancel()
		<-done
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestHub_ReplaysLastState(t *testing.T) {
	hub, url := startHub(t, func(models.InputMessage) {})

	hub.Publish(board.Message{Type: board.MessageState, Display: &board.Display{Title: "XR Lab"}})

	conn := dial(t, url)
	var msg board.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, board.MessageState, msg.Type)
	require.NotNil(t, msg.Display)
	assert.Equal(t, "XR Lab", msg.Display.Title)
}

func TestHub_BroadcastsReload(t *testing.T) {
	hub, url := startHub(t, func(models.InputMessage) {})

	conn := dial(t, url)
	// reload is not replayed, keep publishing until the display is registered
	got := make(chan board.Message, 1)
	go func() {
		var msg board.Message
		if conn.ReadJSON(&msg) == nil {
			got <- msg
		}
	}()
	require.Eventually(t, func() bool {
		hub.Publish(board.Message{Type: board.MessageReload})
		select {
		case msg := <-got:
			return msg.Type == board.MessageReload
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}

func TestHub_ForwardsInput(t *testing.T) {
	inputs := make(chan models.InputMessage, 1)
	_, url := startHub(t, func(msg models.InputMessage) { inputs <- msg })

	conn := dial(t, url)
	require.NoError(t, conn.WriteJSON(models.InputMessage{Type: models.InputSwipe, DX: -90}))

	select {
	case msg := <-inputs:
		assert.Equal(t, models.InputSwipe, msg.Type)
		assert.Equal(t, -90.0, msg.DX)
	case <-time.After(5 * time.Second):
		t.Fatal("input was not forwarded")
	}
}
