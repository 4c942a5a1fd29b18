package repository

import (
	"context"

	"github.com/Yash-SD99/Echoing-Hearts/models"
)

// ProfileRepository stores the revealable profile of each user.
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
}
