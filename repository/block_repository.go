package repository

import (
	"context"

	"github.com/Yash-SD99/Echoing-Hearts/models"
)

// BlockRepository stores one-directional blocks. Most checks care about
// either direction; see IsBlockedEither.
type BlockRepository interface {
	// Create returns ErrAlreadyExists for a repeated block and ErrNotFound
	// when either user is unknown.
	Create(ctx context.Context, blockerID, blockedID string) error
	Delete(ctx context.Context, blockerID, blockedID string) error
	IsBlockedEither(ctx context.Context, userA, userB string) (bool, error)
	ListByBlocker(ctx context.Context, blockerID string) ([]models.Block, error)
}
