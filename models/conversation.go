package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxMessageLen       = 2000
	DefaultMessageLimit = 50
	MaxMessageLimit     = 100
)

// Conversation is an anonymous chat between two users, stored with the pair
// ordered so User1ID < User2ID. UnlockLevel caches the level derived from the
// participants' message counters.
type Conversation struct {
	ID            string     `json:"id"`
	User1ID       string     `json:"user1_id"`
	User2ID       string     `json:"user2_id"`
	WhisperID     *string    `json:"whisper_id"`
	UnlockLevel   int        `json:"unlock_level"`
	LastMessageAt *time.Time `json:"last_message_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// HasParticipant reports whether userID is one of the two users.
func (c *Conversation) HasParticipant(userID string) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// PeerOf returns the other participant.
func (c *Conversation) PeerOf(userID string) string {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

// OrderedPair returns a and b sorted for storage.
func OrderedPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

// ConversationCounters is the per-participant message count of one
// conversation. Empty until the first message; afterwards it has exactly
// two keys.
type ConversationCounters struct {
	ConversationID string         `json:"conversation_id"`
	Counts         map[string]int `json:"counts"`
}

// Count returns userID's count, 0 when absent.
func (c *ConversationCounters) Count(userID string) int {
	if c == nil {
		return 0
	}
	return c.Counts[userID]
}

type ConversationMessage struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// PeerCard is the always-visible part of the other participant. Level 1
// reveals the display name, so it is safe to show from the start.
type PeerCard struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
}

// ConversationSummary is one row of the conversation list.
type ConversationSummary struct {
	Conversation
	Peer        PeerCard             `json:"peer"`
	MyCount     int                  `json:"my_count"`
	PeerCount   int                  `json:"peer_count"`
	LastMessage *ConversationMessage `json:"last_message,omitempty"`
}

type SendMessageRequest struct {
	Content string `json:"content"`
}

func (r *SendMessageRequest) Validate() error {
	r.Content = strings.TrimSpace(r.Content)
	if r.Content == "" {
		return fmt.Errorf("message content is required")
	}
	if utf8.RuneCountInString(r.Content) > MaxMessageLen {
		return fmt.Errorf("message must be at most %d characters", MaxMessageLen)
	}
	return nil
}

type StartConversationRequest struct {
	UserID string `json:"user_id"`
}

// SendResult is what a send produced. LevelChanged is set when the message
// pushed the conversation to a higher unlock level.
type SendResult struct {
	Message      *ConversationMessage  `json:"message"`
	Counters     *ConversationCounters `json:"counters"`
	UnlockLevel  int                   `json:"unlock_level"`
	LevelChanged bool                  `json:"level_changed"`
}
