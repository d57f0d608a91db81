package fanout

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512

	sendBufferSize = 256
)

// Registry is the part of the hub a client reports to
type Registry interface {
	Unregister(client *Client)
}

// Client is one subscriber's WebSocket connection
type Client struct {
	ID   string
	conn *websocket.Conn
	Send chan []byte // exported for hub access

	hub  Registry
	subs Subscriptions

	sendMu sync.Mutex
	closed bool

	connectedAt      time.Time
	messagesSent     int64
	messagesReceived int64
	lastMessageAt    time.Time
	mu               sync.Mutex
}

// NewClient creates a client for an upgraded connection
func NewClient(id string, conn *websocket.Conn, hub Registry, subs Subscriptions) *Client {
	return &Client{
		ID:          id,
		conn:        conn,
		Send:        make(chan []byte, sendBufferSize),
		hub:         hub,
		subs:        subs,
		connectedAt: time.Now(),
	}
}

// ReadPump reads subscription requests until the connection closes
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			var msg ClientMessage
			if err := c.conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("[fanout] client %s unexpected close: %v", c.ID, err)
				}
				return
			}

			c.updateReceived()
			c.HandleMessage(ctx, msg)
		}
	}
}

// WritePump writes queued payloads and keepalive pings to the connection
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case payload, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("[fanout] client %s write error: %v", c.ID, err)
				return
			}

			c.updateSent()

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// TrySend queues a payload without blocking. It returns false when the buffer is full.
func (c *Client) TrySend(payload []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- payload:
		return true
	default:
		return false
	}
}

// close shuts the send channel once; later sends are dropped
func (c *Client) close() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// HandleMessage applies one subscription request
func (c *Client) HandleMessage(ctx context.Context, msg ClientMessage) {
	var err error
	switch msg.Action {
	case ActionJoinDate:
		if msg.Date == "" {
			c.sendError("missing_date", "joinDate requires a date")
			return
		}
		err = c.subs.JoinDate(ctx, c.ID, msg.Date)
	case ActionJoinGame:
		if msg.GameID == "" {
			c.sendError("missing_game", "joinGame requires a gameId")
			return
		}
		err = c.subs.JoinGame(ctx, c.ID, msg.GameID)
	case ActionUnfollowDate:
		err = c.subs.UnfollowDate(ctx, c.ID)
	case ActionUnfollowGame:
		err = c.subs.UnfollowGame(ctx, c.ID)
	case ActionHeartbeat:
		c.sendHeartbeat()
		return
	default:
		c.sendError("unknown_action", fmt.Sprintf("unknown action: %s", msg.Action))
		return
	}

	if err != nil {
		log.Printf("[fanout] client %s %s failed: %v", c.ID, msg.Action, err)
		c.sendError("subscription_failed", err.Error())
	}
}

// GetStats returns connection statistics
func (c *Client) GetStats() ConnectionStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return ConnectionStats{
		ClientID:          c.ID,
		ConnectedAt:       c.connectedAt,
		MessagesSent:      c.messagesSent,
		MessagesReceived:  c.messagesReceived,
		LastMessageAt:     c.lastMessageAt,
		BufferSize:        sendBufferSize,
		BufferUtilization: float64(len(c.Send)) / float64(sendBufferSize) * 100.0,
	}
}

func (c *Client) sendHeartbeat() {
	c.sendControl(MessageTypeHeartbeat, c.GetStats())
}

func (c *Client) sendError(code, message string) {
	c.sendControl(MessageTypeError, ErrorMessage{Code: code, Message: message})
}

func (c *Client) sendControl(kind string, payload interface{}) {
	data, err := json.Marshal(ServerMessage{Type: kind, Payload: payload, Timestamp: time.Now()})
	if err != nil {
		return
	}
	c.TrySend(data)
}

func (c *Client) updateSent() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messagesSent++
	c.lastMessageAt = time.Now()
}

func (c *Client) updateReceived() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messagesReceived++
	c.lastMessageAt = time.Now()
}
