package models

import (
	"time"

	"github.com/lib/pq"
)

// Student is a child linked to exactly one parent.
type Student struct {
	ID          string         `db:"id" json:"id"`
	ParentID    string         `db:"parent_id" json:"parent_id"`
	FullName    string         `db:"full_name" json:"full_name"`
	GradeLevel  string         `db:"grade_level" json:"grade_level"`
	DateOfBirth *time.Time     `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Subjects    pq.StringArray `db:"subjects" json:"subjects"`
	AvatarURL   *string        `db:"avatar_url" json:"avatar_url,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}
