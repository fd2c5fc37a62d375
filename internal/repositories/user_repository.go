package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"tuition-service/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository abstracts user persistence. Accounts are created by the
// auth collaborator; the service reads, edits profiles and deactivates.
type UserRepository interface {
	GetUser(ctx context.Context, userID string) (models.User, error)
	BulkUsers(ctx context.Context, ids []string) ([]models.User, error)
	UpdateProfile(ctx context.Context, userID string, fullName string, avatarURL *string) (models.User, error)
	Deactivate(ctx context.Context, userID string) error
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetUser fetches a user by id.
func (r *UserRepo) GetUser(ctx context.Context, userID string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT id, email, full_name, role, avatar_url, active, created_at FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// BulkUsers fetches multiple users in one query.
func (r *UserRepo) BulkUsers(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	err := r.db.SelectContext(ctx, &users, `SELECT id, email, full_name, role, avatar_url, active, created_at FROM users WHERE id = ANY($1)`, pq.Array(ids))
	return users, err
}

// UpdateProfile applies a profile edit and returns the updated row.
func (r *UserRepo) UpdateProfile(ctx context.Context, userID string, fullName string, avatarURL *string) (models.User, error) {
	var user models.User
	err := r.db.QueryRowxContext(ctx, `UPDATE users SET full_name=$2, avatar_url=COALESCE($3, avatar_url) WHERE id=$1
        RETURNING id, email, full_name, role, avatar_url, active, created_at`, userID, fullName, avatarURL).
		StructScan(&user)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// Deactivate flips the active flag. Users are never hard-deleted.
func (r *UserRepo) Deactivate(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET active = FALSE WHERE id=$1`, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}
