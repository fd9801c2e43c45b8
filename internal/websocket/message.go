package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// FlexibleTime handles both Unix millisecond timestamps and RFC3339 strings
type FlexibleTime struct {
	time.Time
}

// UnmarshalJSON implements custom unmarshaling for timestamps
func (ft *FlexibleTime) UnmarshalJSON(b []byte) error {
	var ms int64
	if err := json.Unmarshal(b, &ms); err == nil {
		ft.Time = time.UnixMilli(ms).UTC()
		return nil
	}

	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return fmt.Errorf("timestamp must be Unix milliseconds (integer) or RFC3339 string")
	}

	t, err := time.Parse(time.RFC3339, str)
	if err != nil {
		return err
	}
	ft.Time = t
	return nil
}

// MarshalJSON always outputs RFC3339
func (ft FlexibleTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(ft.Time)
}

// Message types for WebSocket communication
const (
	// System messages
	MessageTypeSystem    = "system"
	MessageTypePing      = "ping"
	MessageTypePong      = "pong"
	MessageTypeHeartbeat = "heartbeat"
	MessageTypeError     = "error"

	// Pushed by the API
	MessageTypeNotification  = "notification"
	MessageTypeMessageNew    = "message_new"
	MessageTypeSmokingStatus = "smoking_status"
	MessageTypePuffLogged    = "puff_logged"
)

// Message represents a WebSocket message
type Message struct {
	// Type identifies the message type for routing
	Type string `json:"type"`

	// Payload contains the message-specific data
	Payload interface{} `json:"payload,omitempty"`

	// ID is a client-chosen identifier echoed back in replies
	ID string `json:"id,omitempty"`

	// ReplyTo references the original message ID for responses
	ReplyTo string `json:"reply_to,omitempty"`

	// Timestamp when the message was created (accepts Unix ms or RFC3339)
	Timestamp FlexibleTime `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType string, payload interface{}) *Message {
	return &Message{
		Type:      msgType,
		Payload:   payload,
		Timestamp: FlexibleTime{Time: time.Now().UTC()},
	}
}

// NewReply creates a reply message to an original message
func NewReply(original *Message, msgType string, payload interface{}) *Message {
	msg := NewMessage(msgType, payload)
	msg.ReplyTo = original.ID
	return msg
}

// NewErrorMessage creates an error message
func NewErrorMessage(code string, message string) *Message {
	return NewMessage(MessageTypeError, ErrorPayload{
		Code:    code,
		Message: message,
	})
}

// ParsePayload unmarshals the payload into a specific type
func (m *Message) ParsePayload(target interface{}) error {
	if m.Payload == nil {
		return nil
	}

	// Re-marshal so map payloads decoded from the wire become typed
	data, err := json.Marshal(m.Payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

// ErrorPayload represents an error message payload
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PingPayload represents a ping message payload
type PingPayload struct {
	ClientTime int64 `json:"client_time"`
}

// PongPayload represents a pong message payload
type PongPayload struct {
	ClientTime int64 `json:"client_time"`
	ServerTime int64 `json:"server_time"`
	Latency    int64 `json:"latency_ms"`
}

// HeartbeatPayload is pushed periodically so idle clients can detect a dead link
type HeartbeatPayload struct {
	ServerTime int64 `json:"server_time"`
}

// SystemPayload represents system event payloads
type SystemPayload struct {
	Event   string                 `json:"event"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// NotificationPayload mirrors a stored notification
type NotificationPayload struct {
	ID        string    `json:"id"`
	Type      string    `json:"notification_type"`
	ActorID   string    `json:"actor_id"`
	PostID    string    `json:"post_id,omitempty"`
	CommentID string    `json:"comment_id,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageNewPayload announces a direct message to the other participant
type MessageNewPayload struct {
	ConversationID string    `json:"conversation_id"`
	MessageID      string    `json:"message_id"`
	SenderID       string    `json:"sender_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// SmokingStatusPayload is sent to friends when a user toggles smoking now
type SmokingStatusPayload struct {
	UserID       string    `json:"user_id"`
	DisplayName  string    `json:"display_name"`
	IsSmokingNow bool      `json:"is_smoking_now"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PuffLoggedPayload is sent to friends when a user logs a session
type PuffLoggedPayload struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	PuffID      string    `json:"puff_id"`
	Cigarettes  int       `json:"cigarettes"`
	Method      string    `json:"method"`
	Timestamp   time.Time `json:"timestamp"`
}
