package services

import (
	"context"
	"fmt"

	"github.com/Yash-SD99/Echoing-Hearts/models"
	"github.com/Yash-SD99/Echoing-Hearts/pkg"
	"github.com/Yash-SD99/Echoing-Hearts/repository"
)

// BlockService manages blocks between users. A block hides whispers and
// stops conversations in both directions.
type BlockService interface {
	Block(ctx context.Context, blockerID, blockedID string) error
	Unblock(ctx context.Context, blockerID, blockedID string) error
	List(ctx context.Context, blockerID string) ([]models.Block, error)
	IsBlocked(ctx context.Context, userA, userB string) (bool, error)
}

type blockService struct {
	blockRepo repository.BlockRepository
	userRepo  repository.UserRepository
}

func NewBlockService(blockRepo repository.BlockRepository, userRepo repository.UserRepository) BlockService {
	return &blockService{blockRepo: blockRepo, userRepo: userRepo}
}

func (s *blockService) Block(ctx context.Context, blockerID, blockedID string) error {
	if blockerID == blockedID {
		return fmt.Errorf("%w: cannot block yourself", pkg.ErrBadRequest)
	}
	if _, err := s.userRepo.GetByID(ctx, blockedID); err != nil {
		return err
	}
	return s.blockRepo.Create(ctx, blockerID, blockedID)
}

func (s *blockService) Unblock(ctx context.Context, blockerID, blockedID string) error {
	return s.blockRepo.Delete(ctx, blockerID, blockedID)
}

func (s *blockService) List(ctx context.Context, blockerID string) ([]models.Block, error) {
	return s.blockRepo.ListByBlocker(ctx, blockerID)
}

// IsBlocked reports a block in either direction.
func (s *blockService) IsBlocked(ctx context.Context, userA, userB string) (bool, error) {
	return s.blockRepo.IsBlockedEither(ctx, userA, userB)
}
