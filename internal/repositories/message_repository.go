package repositories

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"tuition-service/internal/models"
)

// MessageRepository defines interactions for conversation messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, conversationID, senderID, receiverID, content string) (models.Message, error)
	ListMessages(ctx context.Context, conversationID string) ([]models.Message, error)
	CountUnreadForUser(ctx context.Context, userID string) (map[string]int, error)
	MarkRead(ctx context.Context, conversationID, userID string) error
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores a message and refreshes the parent conversation's
// denormalized preview in the same transaction, so the inbox ordering can
// never go stale relative to the message log.
func (r *MessageRepo) CreateMessage(ctx context.Context, conversationID, senderID, receiverID, content string) (models.Message, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Message{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var msg models.Message
	if err = tx.QueryRowxContext(ctx, `INSERT INTO messages (conversation_id, sender_id, receiver_id, content)
        VALUES ($1, $2, $3, $4) RETURNING id, conversation_id, sender_id, receiver_id, content, read_at, created_at`,
		conversationID, senderID, receiverID, content).
		StructScan(&msg); err != nil {
		return models.Message{}, err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE conversations SET last_message=$2, last_message_at=$3, updated_at=$3 WHERE id=$1`,
		conversationID, msg.Content, msg.CreatedAt); err != nil {
		return models.Message{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// ListMessages returns all messages of a conversation, oldest first.
func (r *MessageRepo) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, `SELECT id, conversation_id, sender_id, receiver_id, content, read_at, created_at
        FROM messages WHERE conversation_id=$1 ORDER BY created_at ASC`, conversationID)
	return msgs, err
}

// CountUnreadForUser returns unread message counts keyed by conversation id
// for everything addressed to the user.
func (r *MessageRepo) CountUnreadForUser(ctx context.Context, userID string) (map[string]int, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT conversation_id, COUNT(*) FROM messages
        WHERE receiver_id=$1 AND read_at IS NULL GROUP BY conversation_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var conversationID string
		var count int
		if err := rows.Scan(&conversationID, &count); err != nil {
			return nil, err
		}
		counts[conversationID] = count
	}
	return counts, rows.Err()
}

// MarkRead sets read_at on every unread message addressed to the user in
// the conversation. Already-read messages are excluded by the predicate, so
// repeated calls are no-ops.
func (r *MessageRepo) MarkRead(ctx context.Context, conversationID, userID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE messages SET read_at=$3
        WHERE conversation_id=$1 AND receiver_id=$2 AND read_at IS NULL`, conversationID, userID, time.Now().UTC())
	return err
}
