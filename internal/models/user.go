package models

import "time"

// Roles a user can hold. Users are created at signup by the auth
// collaborator; the service only reads and deactivates them.
const (
	RoleParent = "parent"
	RoleTutor  = "tutor"
	RoleAdmin  = "admin"
)

// User represents a parent, tutor or admin account.
type User struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	Role      string    `db:"role" json:"role"`
	AvatarURL *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
