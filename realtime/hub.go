package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	// Mobile clients send no Origin; access is gated by the admin token.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Event is one message on the admin live feed
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

type client struct {
	id     string
	conn   *websocket.Conn
	send   chan Event
	hub    *Hub
	userID uint
}

// Hub broadcasts order and listing events to connected staff clients
type Hub struct {
	clients    map[*client]bool
	broadcast  chan Event
	register   chan *client
	unregister chan *client
	done       chan struct{}
	mutex      sync.RWMutex
	logger     *logrus.Logger
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run owns the client set until Stop is called
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mutex.Lock()
			h.clients[c] = true
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.WithFields(logrus.Fields{"client_id": c.id, "user_id": c.userID, "client_count": count}).Info("Live feed client connected")

		case c := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.WithFields(logrus.Fields{"client_id": c.id, "client_count": count}).Info("Live feed client disconnected")

		case ev := <-h.broadcast:
			h.mutex.Lock()
			for c := range h.clients {
				select {
				case c.send <- ev:
				default:
					// slow consumer
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mutex.Unlock()

		case <-h.done:
			h.mutex.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mutex.Unlock()
			return
		}
	}
}

func (h *Hub) Stop() {
	close(h.done)
}

// Broadcast queues an event; it never blocks the caller
func (h *Hub) Broadcast(eventType string, data interface{}) {
	ev := Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	select {
	case h.broadcast <- ev:
	default:
		h.logger.WithField("type", eventType).Warn("Live feed buffer full, dropping event")
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Serve upgrades the request and attaches the connection to the hub
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID uint) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to upgrade live feed connection")
		return
	}

	c := &client{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan Event, sendBuffer),
		hub:    h,
		userID: userID,
	}
	h.register <- c

	go c.writePump()
	go c.readPump()
}

// readPump only watches for close and pong frames
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.WithError(err).Warn("Live feed read error")
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				c.hub.logger.WithError(err).Error("Failed to marshal live feed event")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
