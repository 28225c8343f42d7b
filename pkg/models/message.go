package models

import "time"

// Message types for WebSocket communication
const (
	MessageTypeSnapshot        = "snapshot"
	MessageTypeSubscribe       = "subscribe"
	MessageTypeUnsubscribe     = "unsubscribe"
	MessageTypeHeartbeat       = "heartbeat"
	MessageTypeError           = "error"
	MessageTypeConnectionStats = "connection_stats"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type    string             `json:"type"`
	Payload SubscriptionFilter `json:"payload,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// SubscriptionFilter narrows pushed snapshots to some sports
type SubscriptionFilter struct {
	Sports []string `json:"sports,omitempty"` // registry keys; empty means all
}

// Matches reports whether a sport key passes the filter
func (f SubscriptionFilter) Matches(sport string) bool {
	if len(f.Sports) == 0 {
		return true
	}
	for _, s := range f.Sports {
		if s == sport {
			return true
		}
	}
	return false
}

// ConnectionStats represents connection statistics
type ConnectionStats struct {
	ClientID          string    `json:"client_id"`
	ConnectedAt       time.Time `json:"connected_at"`
	MessagesSent      int64     `json:"messages_sent"`
	MessagesReceived  int64     `json:"messages_received"`
	LastMessageAt     time.Time `json:"last_message_at"`
	BufferSize        int       `json:"buffer_size"`
	BufferUtilization float64   `json:"buffer_utilization"` // percentage
}

// ErrorMessage represents an error message
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
