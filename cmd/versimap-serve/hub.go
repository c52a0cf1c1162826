package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// request is a single query sent over the socket by a client.
type request struct {
	ID  string `json:"id,omitempty"`
	Op  string `json:"op"`
	Ref string `json:"ref"`
}

// response is what a client receives back for a request with the same ID.
type response struct {
	ID     string `json:"id,omitempty"`
	Op     string `json:"op"`
	Ref    string `json:"ref"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Client is one connected WebSocket subscriber. Unlike a broadcast hub,
// every message a Client sends is a query answered only on that Client's
// own connection - there is no fan-out.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks connected clients and resolves their queries against a shared
// MappingTable.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	table  *queryTable
	logger *slog.Logger
}

// NewHub creates a hub serving queries against table.
func NewHub(table *queryTable, logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		table:      table,
		logger:     logger,
	}
}

// Run services client registration and unregistration. It never returns;
// the caller runs it in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client connected", slog.Int("clients", n))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client disconnected", slog.Int("clients", n))
		}
	}
}

// ServeHTTP upgrades the connection and registers a Client for it.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := &Client{hub: h, conn: conn, send: make(chan []byte, 16)}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Error("websocket unexpected close", slog.Any("error", err))
			}
			return
		}

		var req request
		if err := json.Unmarshal(raw, &req); err != nil {
			c.reply(response{Error: "malformed request: " + err.Error()})
			continue
		}
		c.reply(c.hub.table.query(req))
	}
}

func (c *Client) reply(resp response) {
	data, err := json.Marshal(resp)
	if err != nil {
		c.hub.logger.Error("failed to marshal response", slog.Any("error", err))
		return
	}
	select {
	case c.send <- data:
	default:
		c.hub.logger.Warn("client send buffer full, dropping response")
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
