package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/fingercount/internal/vision"
	"github.com/gorilla/websocket"
)

const (
	// writeWait is the time allowed to write a message to a client.
	writeWait = time.Second
	// clientBuffer is how many messages may queue for a slow client before
	// new ones are dropped.
	clientBuffer = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

type countsClient struct {
	send chan []byte
}

// CountsHandler broadcasts every frame's reading to WebSocket clients. It
// is registered as an observer of the frame loop.
type CountsHandler struct {
	clients map[*countsClient]bool
	last    []byte
	mu      sync.RWMutex
}

// NewCountsHandler creates a new CountsHandler with no clients.
func NewCountsHandler() *CountsHandler {
	return &CountsHandler{
		clients: make(map[*countsClient]bool),
	}
}

// Observe sends the reading to every connected client without blocking.
func (h *CountsHandler) Observe(r vision.Reading) {
	msg, err := json.Marshal(r)
	if err != nil {
		log.Printf("Error encoding reading: %v", err)
		return
	}

	h.mu.Lock()
	h.last = msg
	h.mu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// client is too slow, skip this frame
		}
	}
}

// Clients returns the number of connected clients.
func (h *CountsHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *CountsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	c := &countsClient{send: make(chan []byte, clientBuffer)}

	h.mu.Lock()
	if h.last != nil {
		c.send <- h.last
	}
	h.clients[c] = true
	h.mu.Unlock()

	done := make(chan struct{})
	go h.writePump(conn, c, done)

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, c)
	close(c.send)
	h.mu.Unlock()

	<-done
	conn.Close()
}

// writePump forwards queued messages to the connection.
func (h *CountsHandler) writePump(conn *websocket.Conn, c *countsClient, done chan<- struct{}) {
	defer close(done)

	for msg := range c.send {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			conn.Close()
			// drain until the reader unregisters the client
			for range c.send {
			}
			return
		}
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
