package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"tuition-service/internal/models"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrDuplicatePair is returned when an insert loses the race against a
	// concurrent create for the same participant pair.
	ErrDuplicatePair = errors.New("conversation already exists for pair")
)

// NormalizePair orders two participant ids so an unordered pair always maps
// to the same (participant1, participant2) columns.
func NormalizePair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

// ConversationRepository abstracts conversation persistence.
type ConversationRepository interface {
	GetConversation(ctx context.Context, conversationID string) (models.Conversation, error)
	FindByParticipants(ctx context.Context, userA, userB string) (models.Conversation, error)
	CreateConversation(ctx context.Context, userA, userB string, relatedStudentID *string) (models.Conversation, error)
	ListConversationsForUser(ctx context.Context, userID string) ([]models.Conversation, error)
}

// ConversationRepo is a sqlx implementation of ConversationRepository.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

const conversationColumns = `id, participant1_id, participant2_id, related_student_id, last_message, last_message_at, created_at, updated_at`

// GetConversation fetches a conversation by id.
func (r *ConversationRepo) GetConversation(ctx context.Context, conversationID string) (models.Conversation, error) {
	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv, `SELECT `+conversationColumns+` FROM conversations WHERE id=$1`, conversationID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, ErrConversationNotFound
	}
	return conv, err
}

// FindByParticipants looks up the conversation for an unordered pair.
func (r *ConversationRepo) FindByParticipants(ctx context.Context, userA, userB string) (models.Conversation, error) {
	p1, p2 := NormalizePair(userA, userB)
	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv, `SELECT `+conversationColumns+` FROM conversations WHERE participant1_id=$1 AND participant2_id=$2`, p1, p2)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, ErrConversationNotFound
	}
	return conv, err
}

// CreateConversation inserts a conversation row for the pair. The unique
// constraint on the normalized pair turns a concurrent duplicate create into
// ErrDuplicatePair so the caller can re-read the winner.
func (r *ConversationRepo) CreateConversation(ctx context.Context, userA, userB string, relatedStudentID *string) (models.Conversation, error) {
	p1, p2 := NormalizePair(userA, userB)
	var conv models.Conversation
	err := r.db.QueryRowxContext(ctx, `INSERT INTO conversations (participant1_id, participant2_id, related_student_id)
        VALUES ($1, $2, $3) RETURNING `+conversationColumns, p1, p2, relatedStudentID).
		StructScan(&conv)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return models.Conversation{}, ErrDuplicatePair
		}
		return models.Conversation{}, err
	}
	return conv, nil
}

// ListConversationsForUser returns every conversation the user takes part
// in, most recently updated first.
func (r *ConversationRepo) ListConversationsForUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := r.db.SelectContext(ctx, &convs, `SELECT `+conversationColumns+` FROM conversations
        WHERE participant1_id=$1 OR participant2_id=$1 ORDER BY updated_at DESC`, userID)
	return convs, err
}
