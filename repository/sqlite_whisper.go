package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Yash-SD99/Echoing-Hearts/database"
	"github.com/Yash-SD99/Echoing-Hearts/models"
	"github.com/Yash-SD99/Echoing-Hearts/pkg"
	"github.com/Yash-SD99/Echoing-Hearts/pkg/geo"
)

type sqliteWhisperRepo struct {
	db database.TxQuerier
}

func NewSQLiteWhisperRepo(db database.TxQuerier) WhisperRepository {
	return &sqliteWhisperRepo{db: db}
}

const whisperColumns = `w.id, w.author_id, w.author_username, w.title, w.text,
	w.latitude, w.longitude, w.likes, w.dislikes, w.created_at`

func scanWhisper(row interface{ Scan(...any) error }) (*models.Whisper, error) {
	w := &models.Whisper{}
	err := row.Scan(&w.ID, &w.AuthorID, &w.AuthorUsername, &w.Title, &w.Text,
		&w.Latitude, &w.Longitude, &w.Likes, &w.Dislikes, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (r *sqliteWhisperRepo) Create(ctx context.Context, w *models.Whisper) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO whispers (id, author_id, author_username, title, text, latitude, longitude, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.AuthorID, w.AuthorUsername, w.Title, w.Text, w.Latitude, w.Longitude, w.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create whisper: %w", err)
	}
	return nil
}

func (r *sqliteWhisperRepo) GetByID(ctx context.Context, id string) (*models.Whisper, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+whisperColumns+` FROM whispers w WHERE w.id = ?`, id)
	w, err := scanWhisper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: whisper", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get whisper: %w", err)
	}
	return w, nil
}

func (r *sqliteWhisperRepo) ListInBox(ctx context.Context, box geo.Box, viewerID string, limit int) ([]models.Whisper, error) {
	// A box that wraps the antimeridian becomes two longitude ranges.
	ranges := box.LngRanges()
	lngClauses := make([]string, len(ranges))
	args := []any{box.MinLat, box.MaxLat}
	for i, lr := range ranges {
		lngClauses[i] = "w.longitude BETWEEN ? AND ?"
		args = append(args, lr.Min, lr.Max)
	}
	args = append(args, viewerID, viewerID, limit)

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+whisperColumns+`
		FROM whispers w
		WHERE w.latitude BETWEEN ? AND ?
		  AND (`+strings.Join(lngClauses, " OR ")+`)
		  AND NOT EXISTS (
			SELECT 1 FROM blocks b
			WHERE (b.blocker_id = ? AND b.blocked_id = w.author_id)
			   OR (b.blocker_id = w.author_id AND b.blocked_id = ?)
		  )
		ORDER BY w.created_at DESC
		LIMIT ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list whispers: %w", err)
	}
	return collectWhispers(rows)
}

func (r *sqliteWhisperRepo) ListByAuthor(ctx context.Context, authorID string) ([]models.Whisper, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+whisperColumns+` FROM whispers w
		WHERE w.author_id = ? ORDER BY w.created_at DESC`, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list whispers by author: %w", err)
	}
	return collectWhispers(rows)
}

func collectWhispers(rows *sql.Rows) ([]models.Whisper, error) {
	defer rows.Close()

	whispers := []models.Whisper{}
	for rows.Next() {
		w, err := scanWhisper(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan whisper: %w", err)
		}
		whispers = append(whispers, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating whispers: %w", err)
	}
	return whispers, nil
}

func (r *sqliteWhisperRepo) Delete(ctx context.Context, id, authorID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM whispers WHERE id = ? AND author_id = ?`, id, authorID)
	if err != nil {
		return fmt.Errorf("failed to delete whisper: %w", err)
	}
	return requireAffected(result, "whisper")
}

func (r *sqliteWhisperRepo) GetReaction(ctx context.Context, whisperID, userID string) (*models.ReactionKind, error) {
	var kind models.ReactionKind
	err := r.db.QueryRowContext(ctx,
		`SELECT kind FROM whisper_reactions WHERE whisper_id = ? AND user_id = ?`,
		whisperID, userID,
	).Scan(&kind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reaction: %w", err)
	}
	return &kind, nil
}

func (r *sqliteWhisperRepo) GetReactions(ctx context.Context, whisperIDs []string, userID string) (map[string]models.ReactionKind, error) {
	out := make(map[string]models.ReactionKind, len(whisperIDs))
	if len(whisperIDs) == 0 {
		return out, nil
	}

	args := make([]any, 0, len(whisperIDs)+1)
	args = append(args, userID)
	for _, id := range whisperIDs {
		args = append(args, id)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(whisperIDs)), ",")

	rows, err := r.db.QueryContext(ctx,
		`SELECT whisper_id, kind FROM whisper_reactions
		 WHERE user_id = ? AND whisper_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get reactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var kind models.ReactionKind
		if err := rows.Scan(&id, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan reaction: %w", err)
		}
		out[id] = kind
	}
	return out, rows.Err()
}

func (r *sqliteWhisperRepo) SetReaction(ctx context.Context, whisperID, userID string, kind models.ReactionKind) error {
	prev, err := r.GetReaction(ctx, whisperID, userID)
	if err != nil {
		return err
	}
	if prev != nil && *prev == kind {
		return nil
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO whisper_reactions (whisper_id, user_id, kind) VALUES (?, ?, ?)
		ON CONFLICT (whisper_id, user_id) DO UPDATE SET kind = excluded.kind`,
		whisperID, userID, kind,
	); err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: whisper", pkg.ErrNotFound)
		}
		return fmt.Errorf("failed to set reaction: %w", err)
	}

	if err := r.adjustCount(ctx, whisperID, kind, +1); err != nil {
		return err
	}
	if prev != nil {
		return r.adjustCount(ctx, whisperID, *prev, -1)
	}
	return nil
}

func (r *sqliteWhisperRepo) ClearReaction(ctx context.Context, whisperID, userID string) error {
	var kind models.ReactionKind
	err := r.db.QueryRowContext(ctx, `
		DELETE FROM whisper_reactions WHERE whisper_id = ? AND user_id = ?
		RETURNING kind`, whisperID, userID,
	).Scan(&kind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to clear reaction: %w", err)
	}
	return r.adjustCount(ctx, whisperID, kind, -1)
}

func (r *sqliteWhisperRepo) adjustCount(ctx context.Context, whisperID string, kind models.ReactionKind, delta int) error {
	column := "likes"
	if kind == models.ReactionDislike {
		column = "dislikes"
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE whispers SET `+column+` = MAX(0, `+column+` + ?) WHERE id = ?`, delta, whisperID)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", column, err)
	}
	return nil
}

func (r *sqliteWhisperRepo) GetCounts(ctx context.Context, whisperID string) (int, int, error) {
	var likes, dislikes int
	err := r.db.QueryRowContext(ctx,
		`SELECT likes, dislikes FROM whispers WHERE id = ?`, whisperID,
	).Scan(&likes, &dislikes)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, fmt.Errorf("%w: whisper", pkg.ErrNotFound)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get reaction counts: %w", err)
	}
	return likes, dislikes, nil
}
