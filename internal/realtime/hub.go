package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/proup-app/proup-api/internal/domain/events"
	"github.com/proup-app/proup-api/pkg/logger"
	"go.uber.org/zap"
)

const defaultSendBuffer = 64

// Hub tracks connected clients and their room memberships. Delivery is
// best-effort: a client whose send buffer is full is disconnected.
type Hub struct {
	mu          sync.RWMutex
	clients     map[*Client]struct{}
	rooms       map[string]map[*Client]struct{}
	auth        Authorizer
	logger      *logger.Logger
	sendBuffer  int
	joinTimeout time.Duration
}

func NewHub(auth Authorizer, log *logger.Logger, sendBuffer int) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	return &Hub{
		clients:     make(map[*Client]struct{}),
		rooms:       make(map[string]map[*Client]struct{}),
		auth:        auth,
		logger:      log,
		sendBuffer:  sendBuffer,
		joinTimeout: 5 * time.Second,
	}
}

// Serve attaches an upgraded connection for userID and blocks until it
// closes. The client is subscribed to its own user room.
func (h *Hub) Serve(conn *websocket.Conn, userID uuid.UUID) {
	c := newClient(h, conn, userID, h.sendBuffer)
	h.register(c)
	h.join(c, events.UserRoom(userID))

	go c.writePump()
	c.readPump()
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	connectedClients.Inc()
	h.logger.Info("Realtime client connected",
		zap.String("user_id", c.userID.String()),
		zap.Int("total_clients", total),
	)
}

// unregister drops every membership of c and closes its send channel.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	for room := range c.rooms {
		h.removeFromRoom(c, room)
	}
	total := len(h.clients)
	close(c.send)
	h.mu.Unlock()

	connectedClients.Dec()
	h.logger.Info("Realtime client disconnected",
		zap.String("user_id", c.userID.String()),
		zap.Int("total_clients", total),
	)
}

// removeFromRoom requires h.mu held for writing.
func (h *Hub) removeFromRoom(c *Client, room string) {
	delete(c.rooms, room)
	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Join authorizes and subscribes c to room.
func (h *Hub) Join(ctx context.Context, c *Client, room string) error {
	if err := h.auth.CanJoin(ctx, c.userID, room); err != nil {
		return err
	}
	h.join(c, room)
	return nil
}

func (h *Hub) join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
}

func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeFromRoom(c, room)
}

// Deliver sends event to every local subscriber of its room.
func (h *Hub) Deliver(event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to encode realtime event", zap.String("type", event.Type), zap.Error(err))
		return
	}

	var slow []*Client
	h.mu.RLock()
	for c := range h.rooms[event.Room] {
		select {
		case c.send <- data:
			deliveredMessages.WithLabelValues("delivered").Inc()
		default:
			deliveredMessages.WithLabelValues("dropped").Inc()
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("Dropping slow realtime client", zap.String("user_id", c.userID.String()))
		h.unregister(c)
	}
}

// RoomSize reports the number of local subscribers of room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.unregister(c)
	}
}
