package repository

import (
	"context"
	"time"

	"github.com/Yash-SD99/Echoing-Hearts/models"
)

// PasswordResetRepository stores hashed one-time reset tokens.
type PasswordResetRepository interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	// Consume deletes the token with tokenHash and returns it. A token can be
	// consumed once; a second call returns ErrNotFound.
	Consume(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error)
	DeleteByUserID(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	// GetLatestByUserID is used to throttle repeated reset requests.
	GetLatestByUserID(ctx context.Context, userID string) (*models.PasswordResetToken, error)
}
