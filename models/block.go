package models

import "time"

// Block hides two users from each other: no new conversations, no messages,
// and no whispers from the blocked side in nearby results.
type Block struct {
	BlockerID string    `json:"blocker_id"`
	BlockedID string    `json:"blocked_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
