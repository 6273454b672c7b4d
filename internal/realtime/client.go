package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// Client actions
const (
	ActionJoin  = "join"
	ActionLeave = "leave"
	ActionPing  = "ping"
)

// Reply types
const (
	ReplyJoined = "joined"
	ReplyLeft   = "left"
	ReplyPong   = "pong"
	ReplyError  = "error"
)

type clientMessage struct {
	Action string `json:"action"`
	Room   string `json:"room"`
}

type reply struct {
	Type  string `json:"type"`
	Room  string `json:"room,omitempty"`
	Error string `json:"error,omitempty"`
}

// Client is one WebSocket connection. rooms is guarded by the hub's mutex.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID uuid.UUID
	send   chan []byte
	rooms  map[string]struct{}
}

func newClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, buffer int) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, buffer),
		rooms:  make(map[string]struct{}),
	}
}

func (c *Client) UserID() uuid.UUID {
	return c.userID
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("Unexpected WebSocket close",
					zap.String("user_id", c.userID.String()),
					zap.Error(err),
				)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.reply(reply{Type: ReplyError, Error: "malformed message"})
			continue
		}
		c.handle(msg)
	}
}

func (c *Client) handle(msg clientMessage) {
	switch msg.Action {
	case ActionJoin:
		ctx, cancel := context.WithTimeout(context.Background(), c.hub.joinTimeout)
		err := c.hub.Join(ctx, c, msg.Room)
		cancel()
		if err != nil {
			c.reply(reply{Type: ReplyError, Room: msg.Room, Error: err.Error()})
			return
		}
		c.reply(reply{Type: ReplyJoined, Room: msg.Room})
	case ActionLeave:
		c.hub.Leave(c, msg.Room)
		c.reply(reply{Type: ReplyLeft, Room: msg.Room})
	case ActionPing:
		c.reply(reply{Type: ReplyPong})
	default:
		c.reply(reply{Type: ReplyError, Error: "unknown action"})
	}
}

// reply queues a control message without blocking the read loop.
func (c *Client) reply(r reply) {
	data, err := json.Marshal(r)
	if err != nil {
		return
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, ok := c.hub.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
