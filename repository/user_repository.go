package repository

import (
	"context"

	"github.com/Yash-SD99/Echoing-Hearts/models"
)

// UserRepository stores accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByUsername matches on models.UsernameKey, not the raw username.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdateLanguage(ctx context.Context, userID, language string) error
	// Count is the number of registered accounts.
	Count(ctx context.Context) (int, error)
}
