package ws

import "github.com/Yash-SD99/Echoing-Hearts/models"

// Event is the single WebSocket frame shape in both directions.
//
//	{"op": "message_create", "d": {...}, "seq": 42}
//
// Seq is set by the hub on server events so clients can spot gaps.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// Client → server.
const (
	OpHeartbeat      = "heartbeat"
	OpTyping         = "typing"
	OpLocationUpdate = "location_update"
)

// Server → client.
const (
	OpReady              = "ready"
	OpHeartbeatAck       = "heartbeat_ack"
	OpTypingStart        = "typing_start"
	OpPresenceUpdate     = "presence_update"
	OpMessageCreate      = "message_create"
	OpConversationCreate = "conversation_create"
	OpProgressUpdate     = "progress_update"
	OpWhisperNearby      = "whisper_nearby"
	OpWhisperDelete      = "whisper_delete"
	OpError              = "error"
)

// ReadyData is the first event on every connection.
type ReadyData struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Heartbeat int    `json:"heartbeat_interval_ms"`
}

// TypingData is sent by a client while composing in a conversation.
type TypingData struct {
	ConversationID string `json:"conversation_id"`
}

type TypingStartData struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
}

// LocationData is the client's current position.
type LocationData struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PresenceData tells conversation peers a user came online or went away.
type PresenceData struct {
	UserID string `json:"user_id"`
	Online bool   `json:"online"`
}

// ProgressUpdateData is pushed to both participants when a message raises
// the conversation's unlock level.
type ProgressUpdateData struct {
	ConversationID string `json:"conversation_id"`
	Level          int    `json:"level"`
	PreviousLevel  int    `json:"previous_level"`
	Message        string `json:"message"`
}

// WhisperNearbyData announces a new whisper to users close to it.
type WhisperNearbyData struct {
	Whisper        models.Whisper `json:"whisper"`
	DistanceMeters float64        `json:"distance_meters"`
	Message        string         `json:"message"`
}

type WhisperDeleteData struct {
	WhisperID string `json:"whisper_id"`
}

type ErrorData struct {
	Message string `json:"message"`
}
