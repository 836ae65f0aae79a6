package web

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Update types pushed to watchers of a session.
const (
	UpdateMove    = "move"
	UpdateUndo    = "undo"
	UpdateGameEnd = "game_end"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub fans session updates out to the WebSocket clients watching each session.
type Hub struct {
	sessionClients map[string]map[*Client]bool

	broadcast  chan SessionUpdate
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	clientBuf  int

	mu sync.RWMutex
}

// Client is one WebSocket connection watching a session.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// SessionUpdate is the message written to watchers.
type SessionUpdate struct {
	SessionID string      `json:"sessionId"`
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
}

// NewHub sizes the broadcast queue and every client's send queue to buffer.
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		sessionClients: make(map[string]map[*Client]bool),
		broadcast:      make(chan SessionUpdate, buffer),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		done:           make(chan struct{}),
		clientBuf:      buffer,
	}
}

// Run processes registrations and broadcasts until ctx is done, then closes
// every remaining client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for id, clients := range h.sessionClients {
				for client := range clients {
					close(client.send)
				}
				delete(h.sessionClients, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.sessionClients[client.sessionID] == nil {
				h.sessionClients[client.sessionID] = make(map[*Client]bool)
			}
			h.sessionClients[client.sessionID][client] = true
			h.mu.Unlock()

			log.Info().Str("sessionID", client.sessionID).Msg("Client connected to session")

		case client := <-h.unregister:
			h.remove(client)
			log.Info().Str("sessionID", client.sessionID).Msg("Client disconnected from session")

		case update := <-h.broadcast:
			message, err := json.Marshal(update)
			if err != nil {
				log.Error().Err(err).Str("sessionID", update.SessionID).Msg("Failed to marshal session update")
				continue
			}

			h.mu.RLock()
			var slow []*Client
			for client := range h.sessionClients[update.SessionID] {
				select {
				case client.send <- message:
				default:
					slow = append(slow, client)
				}
			}
			h.mu.RUnlock()

			for _, client := range slow {
				log.Warn().Str("sessionID", client.sessionID).Msg("Dropping slow client")
				h.remove(client)
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.sessionClients[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.sessionClients, client.sessionID)
	}
}

// ClientCount reports how many clients watch the session.
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessionClients[sessionID])
}

// BroadcastSessionUpdate queues an update without blocking; it is dropped
// when the queue is full.
func (h *Hub) BroadcastSessionUpdate(update SessionUpdate) {
	select {
	case h.broadcast <- update:
	default:
		log.Warn().Str("sessionID", update.SessionID).Msg("Broadcast channel full, dropping update")
	}
}

// WebSocketHandler upgrades /ws?sessionId=... requests for known sessions.
func (s *Service) WebSocketHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("sessionId")
		if sessionID == "" {
			writeError(w, http.StatusBadRequest, "Missing sessionId parameter")
			return
		}
		s.mu.RLock()
		_, ok := s.sessions[sessionID]
		s.mu.RUnlock()
		if !ok {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
			return
		}

		client := &Client{
			hub:       hub,
			conn:      conn,
			send:      make(chan []byte, hub.clientBuf),
			sessionID: sessionID,
		}
		select {
		case hub.register <- client:
		case <-hub.done:
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}

// readPump drains incoming frames, answering {"type":"ping"} with a pong.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("sessionID", c.sessionID).Msg("WebSocket error")
			}
			return
		}

		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(message, &msg); err == nil && msg.Type == "ping" {
			c.hub.mu.RLock()
			if c.hub.sessionClients[c.sessionID][c] {
				select {
				case c.send <- []byte(`{"type":"pong"}`):
				default:
				}
			}
			c.hub.mu.RUnlock()
		}
	}
}

// writePump writes one frame per queued message and pings the peer.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
