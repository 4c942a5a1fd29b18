package repository

import (
	"context"
	"fmt"

	"github.com/Yash-SD99/Echoing-Hearts/database"
	"github.com/Yash-SD99/Echoing-Hearts/models"
	"github.com/Yash-SD99/Echoing-Hearts/pkg"
)

type sqliteBlockRepo struct {
	db database.TxQuerier
}

func NewSQLiteBlockRepo(db database.TxQuerier) BlockRepository {
	return &sqliteBlockRepo{db: db}
}

func (r *sqliteBlockRepo) Create(ctx context.Context, blockerID, blockedID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO blocks (blocker_id, blocked_id) VALUES (?, ?)`, blockerID, blockedID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user already blocked", pkg.ErrAlreadyExists)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: user", pkg.ErrNotFound)
		}
		return fmt.Errorf("failed to block user: %w", err)
	}
	return nil
}

func (r *sqliteBlockRepo) Delete(ctx context.Context, blockerID, blockedID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM blocks WHERE blocker_id = ? AND blocked_id = ?`, blockerID, blockedID)
	if err != nil {
		return fmt.Errorf("failed to unblock user: %w", err)
	}
	return requireAffected(result, "block")
}

func (r *sqliteBlockRepo) IsBlockedEither(ctx context.Context, userA, userB string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM blocks
			WHERE (blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)
		)`, userA, userB, userB, userA,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check block: %w", err)
	}
	return exists, nil
}

func (r *sqliteBlockRepo) ListByBlocker(ctx context.Context, blockerID string) ([]models.Block, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT b.blocker_id, b.blocked_id, u.username, b.created_at
		FROM blocks b
		JOIN users u ON u.id = b.blocked_id
		WHERE b.blocker_id = ?
		ORDER BY b.created_at DESC`, blockerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}
	defer rows.Close()

	blocks := []models.Block{}
	for rows.Next() {
		var b models.Block
		if err := rows.Scan(&b.BlockerID, &b.BlockedID, &b.Username, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan block: %w", err)
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating blocks: %w", err)
	}
	return blocks, nil
}
