package repository

import (
	"context"

	"github.com/Yash-SD99/Echoing-Hearts/models"
)

// ConversationRepository stores conversations, their messages and the
// per-participant message counters.
type ConversationRepository interface {
	// Create inserts a conversation; User1ID/User2ID must already be ordered.
	// An existing pair yields ErrAlreadyExists.
	Create(ctx context.Context, c *models.Conversation) error
	GetByID(ctx context.Context, id string) (*models.Conversation, error)
	// GetByPair finds the conversation between two users in either order.
	GetByPair(ctx context.Context, userA, userB string) (*models.Conversation, error)
	// ListByUser returns userID's conversations, most recently active first.
	ListByUser(ctx context.Context, userID string) ([]models.ConversationSummary, error)

	// GetCounters returns every counter row of the conversation; the map is
	// empty before the first message.
	GetCounters(ctx context.Context, conversationID string) (*models.ConversationCounters, error)
	// IncrementCounter adds exactly one to senderID's counter and makes sure
	// peerID has a row (at zero if new). Run it in the same transaction as
	// the message insert.
	IncrementCounter(ctx context.Context, conversationID, senderID, peerID string) (*models.ConversationCounters, error)
	// RaiseUnlockLevel stores level if it is higher than the cached one and
	// returns the level now stored.
	RaiseUnlockLevel(ctx context.Context, conversationID string, level int) (int, error)

	CreateMessage(ctx context.Context, msg *models.ConversationMessage) error
	// ListMessages returns up to limit messages older than beforeID (all
	// when empty), newest first. A beforeID that is not a message of this
	// conversation yields ErrBadRequest.
	ListMessages(ctx context.Context, conversationID, beforeID string, limit int) ([]models.ConversationMessage, error)
}
