package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"amora-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

const messageColumns = `id, conversation_id, sender_id, content, type, is_encrypted, reply_to_id, self_destruct_at, created_at, is_deleted`

// MessageRepository defines interactions for conversation messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg models.Message) (models.Message, error)
	GetMessage(ctx context.Context, id uuid.UUID) (models.Message, error)
	GetConversationMessages(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]models.Message, error)
	MarkAsRead(ctx context.Context, messageID, userID uuid.UUID) error
	AddReaction(ctx context.Context, messageID, userID uuid.UUID, reaction string) error
	SoftDeleteMessage(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores a message and returns the persisted row.
func (r *MessageRepo) CreateMessage(ctx context.Context, msg models.Message) (models.Message, error) {
	var stored models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (id, conversation_id, sender_id, content, type, is_encrypted, reply_to_id, self_destruct_at, created_at, is_deleted)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING `+messageColumns,
		msg.ID, msg.ConversationID, msg.SenderID, msg.Content, msg.Type, msg.IsEncrypted,
		msg.ReplyToID, msg.SelfDestructAt, msg.CreatedAt, msg.IsDeleted).
		StructScan(&stored)
	return stored, err
}

// GetMessage retrieves a single message by id.
func (r *MessageRepo) GetMessage(ctx context.Context, id uuid.UUID) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// GetConversationMessages returns non-deleted messages newest first.
func (r *MessageRepo) GetConversationMessages(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+` FROM messages
        WHERE conversation_id=$1 AND is_deleted = FALSE
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`, conversationID, limit, offset)
	return msgs, err
}

// MarkAsRead upserts a read receipt. Duplicate calls are no-ops.
func (r *MessageRepo) MarkAsRead(ctx context.Context, messageID, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO message_read_receipts (message_id, user_id, read_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (message_id, user_id) DO NOTHING`, messageID, userID)
	return err
}

// AddReaction upserts a reaction; a second reaction from the same user
// replaces the first.
func (r *MessageRepo) AddReaction(ctx context.Context, messageID, userID uuid.UUID, reaction string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO message_reactions (message_id, user_id, reaction, created_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (message_id, user_id) DO UPDATE SET reaction = EXCLUDED.reaction`, messageID, userID, reaction)
	return err
}

// SoftDeleteMessage clears content and leaves a tombstone row.
func (r *MessageRepo) SoftDeleteMessage(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET is_deleted = TRUE, content = '' WHERE id=$1`, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// DeleteExpired hard-deletes every message past its self-destruct deadline
// and returns the number of rows removed. Called only by the expiry sweeper.
func (r *MessageRepo) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE self_destruct_at IS NOT NULL AND self_destruct_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
