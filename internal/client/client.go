package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/jackmcnulty/sports-ticker/pkg/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 1024

	// Buffer size for outbound messages
	sendBufferSize = 32
)

// Client represents a WebSocket client connection
type Client struct {
	ID          string
	conn        *websocket.Conn
	Send        chan models.ServerMessage // exported for hub access
	hub         Hub
	logger      *zap.Logger
	filter      models.SubscriptionFilter
	filterMu    sync.RWMutex
	connectedAt time.Time

	messagesSent     int64
	messagesReceived int64
	lastMessageAt    time.Time
	mu               sync.Mutex

	// sendMu guards Send against a send racing Close
	sendMu sync.Mutex
	closed bool
}

// Hub defines what a client needs from the broadcast hub
type Hub interface {
	Unregister(client *Client)
	Refresh(client *Client)
}

// NewClient creates a new client instance
func NewClient(id string, conn *websocket.Conn, hub Hub, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		ID:          id,
		conn:        conn,
		Send:        make(chan models.ServerMessage, sendBufferSize),
		hub:         hub,
		logger:      logger.With(zap.String("client_id", id)),
		connectedAt: time.Now(),
	}
}

// ReadPump pumps messages from the WebSocket connection to the hub
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
			var msg models.ClientMessage
			if err := c.conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					c.logger.Warn("unexpected close", zap.Error(err))
				}
				return
			}

			c.updateReceived()
			c.handleClientMessage(msg)
		}
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
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

		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Debug("write failed", zap.Error(err))
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

// TrySend queues a message without blocking. It returns false when the
// client's buffer is full or the client is closed.
func (c *Client) TrySend(msg models.ServerMessage) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

// Close closes the send channel, which makes WritePump end the
// connection. It is safe to call more than once.
func (c *Client) Close() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// SetFilter updates the client's subscription filter
func (c *Client) SetFilter(filter models.SubscriptionFilter) {
	c.filterMu.Lock()
	defer c.filterMu.Unlock()
	c.filter = filter
}

// Filter returns the client's current filter
func (c *Client) Filter() models.SubscriptionFilter {
	c.filterMu.RLock()
	defer c.filterMu.RUnlock()
	return c.filter
}

// Stats returns connection statistics
func (c *Client) Stats() models.ConnectionStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return models.ConnectionStats{
		ClientID:          c.ID,
		ConnectedAt:       c.connectedAt,
		MessagesSent:      c.messagesSent,
		MessagesReceived:  c.messagesReceived,
		LastMessageAt:     c.lastMessageAt,
		BufferSize:        sendBufferSize,
		BufferUtilization: float64(len(c.Send)) / float64(sendBufferSize) * 100.0,
	}
}

func (c *Client) handleClientMessage(msg models.ClientMessage) {
	switch msg.Type {
	case models.MessageTypeSubscribe:
		c.SetFilter(msg.Payload)
		c.logger.Debug("subscribed", zap.Strings("sports", msg.Payload.Sports))
		c.hub.Refresh(c)
	case models.MessageTypeUnsubscribe:
		c.SetFilter(models.SubscriptionFilter{})
		c.hub.Refresh(c)
	case models.MessageTypeHeartbeat:
		c.TrySend(models.ServerMessage{
			Type:      models.MessageTypeHeartbeat,
			Payload:   c.Stats(),
			Timestamp: time.Now(),
		})
	default:
		c.sendError("unknown_message_type", fmt.Sprintf("unknown message type: %s", msg.Type))
	}
}

func (c *Client) sendError(code, message string) {
	c.TrySend(models.ServerMessage{
		Type: models.MessageTypeError,
		Payload: models.ErrorMessage{
			Code:    code,
			Message: message,
		},
		Timestamp: time.Now(),
	})
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
