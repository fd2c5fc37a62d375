package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"tuition-service/internal/models"
)

var ErrStudentNotFound = errors.New("student not found")

// StudentRepository abstracts student persistence. All writes are scoped to
// the owning parent.
type StudentRepository interface {
	CreateStudent(ctx context.Context, student models.Student) (models.Student, error)
	GetStudent(ctx context.Context, studentID string) (models.Student, error)
	ListStudentsForParent(ctx context.Context, parentID string) ([]models.Student, error)
	UpdateStudent(ctx context.Context, student models.Student) (models.Student, error)
	DeleteStudent(ctx context.Context, studentID string, parentID string) error
}

// StudentRepo is a sqlx implementation of StudentRepository.
type StudentRepo struct {
	db *sqlx.DB
}

// NewStudentRepo constructs a StudentRepo.
func NewStudentRepo(db *sqlx.DB) *StudentRepo {
	return &StudentRepo{db: db}
}

const studentColumns = `id, parent_id, full_name, grade_level, date_of_birth, subjects, avatar_url, created_at, updated_at`

// CreateStudent inserts a student owned by a parent.
func (r *StudentRepo) CreateStudent(ctx context.Context, student models.Student) (models.Student, error) {
	var created models.Student
	err := r.db.QueryRowxContext(ctx, `INSERT INTO students (parent_id, full_name, grade_level, date_of_birth, subjects, avatar_url)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+studentColumns,
		student.ParentID, student.FullName, student.GradeLevel, student.DateOfBirth, pq.Array(student.Subjects), student.AvatarURL).
		StructScan(&created)
	return created, err
}

// GetStudent fetches a student by id.
func (r *StudentRepo) GetStudent(ctx context.Context, studentID string) (models.Student, error) {
	var student models.Student
	err := r.db.GetContext(ctx, &student, `SELECT `+studentColumns+` FROM students WHERE id=$1`, studentID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Student{}, ErrStudentNotFound
	}
	return student, err
}

// ListStudentsForParent returns the parent's children.
func (r *StudentRepo) ListStudentsForParent(ctx context.Context, parentID string) ([]models.Student, error) {
	var students []models.Student
	err := r.db.SelectContext(ctx, &students, `SELECT `+studentColumns+` FROM students WHERE parent_id=$1 ORDER BY created_at ASC`, parentID)
	return students, err
}

// UpdateStudent applies a parent edit. The parent id scopes the update.
func (r *StudentRepo) UpdateStudent(ctx context.Context, student models.Student) (models.Student, error) {
	var updated models.Student
	err := r.db.QueryRowxContext(ctx, `UPDATE students SET full_name=$3, grade_level=$4, date_of_birth=$5, subjects=$6, avatar_url=$7, updated_at=$8
        WHERE id=$1 AND parent_id=$2 RETURNING `+studentColumns,
		student.ID, student.ParentID, student.FullName, student.GradeLevel, student.DateOfBirth, pq.Array(student.Subjects), student.AvatarURL, time.Now().UTC()).
		StructScan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Student{}, ErrStudentNotFound
	}
	return updated, err
}

// DeleteStudent removes a student by explicit parent action.
func (r *StudentRepo) DeleteStudent(ctx context.Context, studentID string, parentID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id=$1 AND parent_id=$2`, studentID, parentID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrStudentNotFound
	}
	return nil
}
