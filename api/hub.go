package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/aouyang1/labboard/api/models"
	"github.com/aouyang1/labboard/board"
	"github.com/aouyang1/labboard/metrics"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxInputSize   = 1024
	sendBufferSize = 64
	broadcastQueue = 256
)

var upgrader = websocket.Upgrader{
	// displays are served from this host, the admin area is on the same page
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans board messages out to the connected displays.
type Hub struct {
	register   chan *displayClient
	unregister chan *displayClient
	broadcast  chan []byte
	clients    map[*displayClient]struct{}
	done       chan struct{}

	// last state message, replayed to displays when they connect
	last []byte
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *displayClient),
		unregister: make(chan *displayClient),
		broadcast:  make(chan []byte, broadcastQueue),
		clients:    make(map[*displayClient]struct{}),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			metrics.DisplaysConnected.Set(float64(len(h.clients)))
			slog.Info("display connected", "id", client.id, "displays", len(h.clients))
			if h.last != nil {
				h.send(client, h.last)
			}
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				slog.Info("display disconnected", "id", client.id, "displays", len(h.clients))
			}
		case msg := <-h.broadcast:
			if isState(msg) {
				h.last = msg
			}
			for client := range h.clients {
				h.send(client, msg)
			}
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return
		}
	}
}

func (h *Hub) send(client *displayClient, msg []byte) {
	select {
	case client.send <- msg:
	default:
		slog.Warn("display too slow, disconnecting", "id", client.id)
		metrics.DisplayMessagesDropped.Inc()
		h.drop(client)
	}
}

func (h *Hub) drop(client *displayClient) {
	delete(h.clients, client)
	close(client.send)
	client.conn.Close()
	metrics.DisplaysConnected.Set(float64(len(h.clients)))
}

// Publish queues msg for every display. It never blocks: when the queue is full the
// message is dropped, the next snapshot supersedes it.
func (h *Hub) Publish(msg board.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal display message", "type", msg.Type, "error", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		metrics.DisplayMessagesDropped.Inc()
	}
}

func isState(msg []byte) bool {
	var head struct {
		Type board.MessageType `json:"type"`
	}
	return json.Unmarshal(msg, &head) == nil && head.Type == board.MessageState
}

type displayClient struct {
	id      string
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	onInput func(models.InputMessage)
}

// Serve upgrades the request and pumps messages until the display goes away. Input sent by
// the display is passed to onInput.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, onInput func(models.InputMessage)) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	client := &displayClient{
		id:      uuid.NewString(),
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		onInput: onInput,
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	client.readPump()
}

func (c *displayClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
	}()
	c.conn.SetReadLimit(maxInputSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		var msg models.InputMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("display read failed", "id", c.id, "error", err)
			}
			return
		}
		c.onInput(msg)
	}
}

func (c *displayClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
