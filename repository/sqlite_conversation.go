package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Yash-SD99/Echoing-Hearts/database"
	"github.com/Yash-SD99/Echoing-Hearts/models"
	"github.com/Yash-SD99/Echoing-Hearts/pkg"
)

type sqliteConversationRepo struct {
	db database.TxQuerier
}

func NewSQLiteConversationRepo(db database.TxQuerier) ConversationRepository {
	return &sqliteConversationRepo{db: db}
}

const conversationColumns = `c.id, c.user1_id, c.user2_id, c.whisper_id, c.unlock_level, c.last_message_at, c.created_at`

func scanConversation(row interface{ Scan(...any) error }, extra ...any) (*models.Conversation, error) {
	c := &models.Conversation{}
	var whisperID sql.NullString
	var lastMessageAt sql.NullTime

	dest := append([]any{
		&c.ID, &c.User1ID, &c.User2ID, &whisperID, &c.UnlockLevel, &lastMessageAt, &c.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if whisperID.Valid {
		c.WhisperID = &whisperID.String
	}
	if lastMessageAt.Valid {
		c.LastMessageAt = &lastMessageAt.Time
	}
	return c, nil
}

func (r *sqliteConversationRepo) Create(ctx context.Context, c *models.Conversation) error {
	if c.UnlockLevel == 0 {
		c.UnlockLevel = 1
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO conversations (id, user1_id, user2_id, whisper_id, unlock_level)
		VALUES (lower(hex(randomblob(8))), ?, ?, ?, ?)
		RETURNING id, created_at`,
		c.User1ID, c.User2ID, c.WhisperID, c.UnlockLevel,
	).Scan(&c.ID, &c.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: conversation", pkg.ErrAlreadyExists)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: user or whisper", pkg.ErrNotFound)
		}
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

func (r *sqliteConversationRepo) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+conversationColumns+` FROM conversations c WHERE c.id = ?`, id)
	return r.one(row)
}

func (r *sqliteConversationRepo) GetByPair(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	u1, u2 := models.OrderedPair(userA, userB)
	row := r.db.QueryRowContext(ctx,
		`SELECT `+conversationColumns+` FROM conversations c WHERE c.user1_id = ? AND c.user2_id = ?`, u1, u2)
	return r.one(row)
}

func (r *sqliteConversationRepo) one(row *sql.Row) (*models.Conversation, error) {
	c, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: conversation", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return c, nil
}

func (r *sqliteConversationRepo) ListByUser(ctx context.Context, userID string) ([]models.ConversationSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+conversationColumns+`,
			peer.id, COALESCE(p.display_name, ''), COALESCE(p.avatar, 'male'),
			COALESCE(mine.message_count, 0), COALESCE(theirs.message_count, 0),
			lm.id, lm.sender_id, lm.content, lm.created_at
		FROM conversations c
		JOIN users peer ON peer.id = CASE WHEN c.user1_id = ? THEN c.user2_id ELSE c.user1_id END
		LEFT JOIN profiles p ON p.user_id = peer.id
		LEFT JOIN conversation_counters mine
			ON mine.conversation_id = c.id AND mine.user_id = ?
		LEFT JOIN conversation_counters theirs
			ON theirs.conversation_id = c.id AND theirs.user_id = peer.id
		LEFT JOIN conversation_messages lm ON lm.rowid = (
			SELECT MAX(m.rowid) FROM conversation_messages m WHERE m.conversation_id = c.id
		)
		WHERE c.user1_id = ? OR c.user2_id = ?
		ORDER BY COALESCE(c.last_message_at, c.created_at) DESC`,
		userID, userID, userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	summaries := []models.ConversationSummary{}
	for rows.Next() {
		var s models.ConversationSummary
		var lmID, lmSender, lmContent sql.NullString
		var lmCreated sql.NullTime

		c, err := scanConversation(rows,
			&s.Peer.UserID, &s.Peer.DisplayName, &s.Peer.Avatar,
			&s.MyCount, &s.PeerCount,
			&lmID, &lmSender, &lmContent, &lmCreated,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		s.Conversation = *c

		if lmID.Valid {
			s.LastMessage = &models.ConversationMessage{
				ID:             lmID.String,
				ConversationID: c.ID,
				SenderID:       lmSender.String,
				Content:        lmContent.String,
				CreatedAt:      lmCreated.Time,
			}
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversations: %w", err)
	}
	return summaries, nil
}

func (r *sqliteConversationRepo) GetCounters(ctx context.Context, conversationID string) (*models.ConversationCounters, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, message_count FROM conversation_counters WHERE conversation_id = ?`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation counters: %w", err)
	}
	defer rows.Close()

	counters := &models.ConversationCounters{
		ConversationID: conversationID,
		Counts:         make(map[string]int, 2),
	}
	for rows.Next() {
		var userID string
		var count int
		if err := rows.Scan(&userID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan conversation counter: %w", err)
		}
		counters.Counts[userID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversation counters: %w", err)
	}
	return counters, nil
}

func (r *sqliteConversationRepo) IncrementCounter(ctx context.Context, conversationID, senderID, peerID string) (*models.ConversationCounters, error) {
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO conversation_counters (conversation_id, user_id, message_count)
		VALUES (?, ?, 1)
		ON CONFLICT (conversation_id, user_id) DO UPDATE
		SET message_count = message_count + 1, updated_at = CURRENT_TIMESTAMP`,
		conversationID, senderID,
	); err != nil {
		return nil, fmt.Errorf("failed to increment conversation counter: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO conversation_counters (conversation_id, user_id, message_count)
		VALUES (?, ?, 0)
		ON CONFLICT (conversation_id, user_id) DO NOTHING`,
		conversationID, peerID,
	); err != nil {
		return nil, fmt.Errorf("failed to initialize peer counter: %w", err)
	}

	return r.GetCounters(ctx, conversationID)
}

func (r *sqliteConversationRepo) RaiseUnlockLevel(ctx context.Context, conversationID string, level int) (int, error) {
	var stored int
	err := r.db.QueryRowContext(ctx, `
		UPDATE conversations SET unlock_level = MAX(unlock_level, ?)
		WHERE id = ?
		RETURNING unlock_level`, level, conversationID,
	).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: conversation", pkg.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to update unlock level: %w", err)
	}
	return stored, nil
}

func (r *sqliteConversationRepo) CreateMessage(ctx context.Context, msg *models.ConversationMessage) error {
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO conversation_messages (id, conversation_id, sender_id, content, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.ConversationID, msg.SenderID, msg.Content, msg.CreatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	if _, err := r.db.ExecContext(ctx,
		`UPDATE conversations SET last_message_at = ? WHERE id = ?`,
		msg.CreatedAt.UTC(), msg.ConversationID,
	); err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}
	return nil
}

func (r *sqliteConversationRepo) ListMessages(ctx context.Context, conversationID, beforeID string, limit int) ([]models.ConversationMessage, error) {
	query := `
		SELECT id, conversation_id, sender_id, content, created_at
		FROM conversation_messages
		WHERE conversation_id = ?`
	args := []any{conversationID}

	if beforeID != "" {
		var cursor int64
		err := r.db.QueryRowContext(ctx,
			`SELECT rowid FROM conversation_messages WHERE id = ? AND conversation_id = ?`,
			beforeID, conversationID,
		).Scan(&cursor)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: unknown message cursor", pkg.ErrBadRequest)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve message cursor: %w", err)
		}
		query += ` AND rowid < ?`
		args = append(args, cursor)
	}
	query += ` ORDER BY rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := []models.ConversationMessage{}
	for rows.Next() {
		var m models.ConversationMessage
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return messages, nil
}
