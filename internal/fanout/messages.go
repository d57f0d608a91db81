package fanout

import "time"

// Client actions
const (
	ActionJoinDate     = "joinDate"
	ActionJoinGame     = "joinGame"
	ActionUnfollowDate = "unfollowDate"
	ActionUnfollowGame = "unfollowGame"
	ActionHeartbeat    = "heartbeat"
)

// Server message types
const (
	MessageTypeDateUpdate = "date_update"
	MessageTypeHeartbeat  = "heartbeat"
	MessageTypeError      = "error"
)

// SubscriptionTTL is how long a join lasts without being renewed
const SubscriptionTTL = 12 * time.Hour

// ClientMessage is a request from a subscriber
type ClientMessage struct {
	Action string `json:"action"`
	Date   string `json:"date,omitempty"`
	GameID string `json:"gameId,omitempty"`
}

// DateUpdate tells date subscribers their schedule changed
type DateUpdate struct {
	Type string `json:"type"`
	Date string `json:"date"`
}

// GameUpdate tells game subscribers a new gamepack version is available
type GameUpdate struct {
	GameID  string `json:"gameId"`
	Key     string `json:"key"`
	Version string `json:"version"`
}

// ServerMessage is a control reply to a subscriber
type ServerMessage struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ErrorMessage describes a rejected request
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ConnectionStats describes one subscriber connection
type ConnectionStats struct {
	ClientID          string    `json:"client_id"`
	ConnectedAt       time.Time `json:"connected_at"`
	MessagesSent      int64     `json:"messages_sent"`
	MessagesReceived  int64     `json:"messages_received"`
	LastMessageAt     time.Time `json:"last_message_at"`
	BufferSize        int       `json:"buffer_size"`
	BufferUtilization float64   `json:"buffer_utilization"`
}
