package repository

import (
	"context"

	"github.com/Yash-SD99/Echoing-Hearts/models"
	"github.com/Yash-SD99/Echoing-Hearts/pkg/geo"
)

// WhisperRepository stores whispers and their reactions.
type WhisperRepository interface {
	Create(ctx context.Context, w *models.Whisper) error
	GetByID(ctx context.Context, id string) (*models.Whisper, error)
	// ListInBox returns whispers inside box, skipping authors that viewerID
	// has blocked or that blocked viewerID. Distance filtering is left to
	// the caller.
	ListInBox(ctx context.Context, box geo.Box, viewerID string, limit int) ([]models.Whisper, error)
	ListByAuthor(ctx context.Context, authorID string) ([]models.Whisper, error)
	// Delete removes a whisper only if authorID wrote it.
	Delete(ctx context.Context, id, authorID string) error

	GetReaction(ctx context.Context, whisperID, userID string) (*models.ReactionKind, error)
	// GetReactions maps whisper ID to userID's reaction; whispers without
	// one are absent.
	GetReactions(ctx context.Context, whisperIDs []string, userID string) (map[string]models.ReactionKind, error)
	// SetReaction upserts the user's reaction and keeps the denormalized
	// counters in step. Run it inside a transaction.
	SetReaction(ctx context.Context, whisperID, userID string, kind models.ReactionKind) error
	ClearReaction(ctx context.Context, whisperID, userID string) error
	GetCounts(ctx context.Context, whisperID string) (likes, dislikes int, err error)
}
