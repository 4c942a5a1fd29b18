package services

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Yash-SD99/Echoing-Hearts/database"
	"github.com/Yash-SD99/Echoing-Hearts/models"
	"github.com/Yash-SD99/Echoing-Hearts/pkg"
	"github.com/Yash-SD99/Echoing-Hearts/pkg/email"
	"github.com/Yash-SD99/Echoing-Hearts/repository"
	"golang.org/x/crypto/bcrypt"
)

// resetCooldown is the minimum gap between two reset emails to one account.
const resetCooldown = 60 * time.Second

// PasswordResetService runs the emailed reset-link flow.
type PasswordResetService interface {
	// ForgotPassword mails a reset link if the email belongs to an account.
	// It returns the seconds left when a link was sent too recently; the
	// caller must not reveal whether the account exists.
	ForgotPassword(ctx context.Context, req *models.ForgotPasswordRequest) (cooldown int, err error)
	ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error
	// CleanupExpired deletes expired tokens and returns how many went.
	CleanupExpired(ctx context.Context) (int64, error)
}

type passwordResetService struct {
	db        *sql.DB
	userRepo  repository.UserRepository
	resetRepo repository.PasswordResetRepository
	sender    email.Sender
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewPasswordResetService accepts a nil sender; reset is then unavailable.
func NewPasswordResetService(
	db *sql.DB,
	userRepo repository.UserRepository,
	resetRepo repository.PasswordResetRepository,
	sender email.Sender,
	tokenTTL time.Duration,
) PasswordResetService {
	return &passwordResetService{
		db:        db,
		userRepo:  userRepo,
		resetRepo: resetRepo,
		sender:    sender,
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

func (s *passwordResetService) ForgotPassword(ctx context.Context, req *models.ForgotPasswordRequest) (int, error) {
	if s.sender == nil {
		return 0, fmt.Errorf("%w: password reset is not configured", pkg.ErrUnavailable)
	}
	if err := req.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	now := s.now()
	latest, err := s.resetRepo.GetLatestByUserID(ctx, user.ID)
	if err != nil && !errors.Is(err, pkg.ErrNotFound) {
		return 0, err
	}
	if latest != nil {
		if wait := latest.CreatedAt.Add(resetCooldown).Sub(now); wait > 0 {
			return int(wait.Seconds()) + 1, nil
		}
	}

	token, err := randomHex(32)
	if err != nil {
		return 0, fmt.Errorf("failed to generate reset token: %w", err)
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txResetRepo := repository.NewSQLiteResetTokenRepo(tx)
		if err := txResetRepo.DeleteByUserID(ctx, user.ID); err != nil {
			return err
		}
		return txResetRepo.Create(ctx, &models.PasswordResetToken{
			UserID:    user.ID,
			TokenHash: hashToken(token),
			ExpiresAt: now.Add(s.tokenTTL),
			CreatedAt: now,
		})
	})
	if err != nil {
		return 0, err
	}

	if err := s.sender.SendPasswordReset(ctx, user.Email, user.Username, token); err != nil {
		log.Printf("[auth] password reset email to user %s failed: %v", user.ID, err)
		return 0, fmt.Errorf("%w: could not send reset email", pkg.ErrUnavailable)
	}
	return 0, nil
}

// ResetPassword consumes the token whether or not it has expired, so a
// token is never usable twice. All sessions of the user are revoked.
func (s *passwordResetService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	token, err := s.resetRepo.Consume(ctx, hashToken(req.Token))
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return errInvalidResetToken
		}
		return err
	}
	if s.now().After(token.ExpiresAt) {
		return errInvalidResetToken
	}

	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := repository.NewSQLiteUserRepo(tx).UpdatePassword(ctx, token.UserID, string(hash)); err != nil {
			return err
		}
		return repository.NewSQLiteSessionRepo(tx).DeleteByUserID(ctx, token.UserID)
	})
}

func (s *passwordResetService) CleanupExpired(ctx context.Context) (int64, error) {
	return s.resetRepo.DeleteExpired(ctx, s.now())
}

var errInvalidResetToken = fmt.Errorf("%w: invalid or expired reset token", pkg.ErrBadRequest)

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
