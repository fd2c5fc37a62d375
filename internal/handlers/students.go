package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tuition-service/internal/models"
	"tuition-service/internal/repositories"
)

// StudentHandler manages parent-scoped student endpoints.
type StudentHandler struct {
	students repositories.StudentRepository
}

// NewStudentHandler builds a StudentHandler.
func NewStudentHandler(students repositories.StudentRepository) *StudentHandler {
	return &StudentHandler{students: students}
}

type studentRequest struct {
	FullName    string   `json:"full_name" binding:"required"`
	GradeLevel  string   `json:"grade_level" binding:"required"`
	DateOfBirth *string  `json:"date_of_birth"`
	Subjects    []string `json:"subjects"`
	AvatarURL   *string  `json:"avatar_url"`
}

// CreateStudent adds a child for the calling parent.
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dob, err := parseDateOfBirth(req.DateOfBirth)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_of_birth, expected YYYY-MM-DD"})
		return
	}

	student := models.Student{
		ParentID:    c.GetString("userID"),
		FullName:    req.FullName,
		GradeLevel:  req.GradeLevel,
		DateOfBirth: dob,
		Subjects:    req.Subjects,
		AvatarURL:   req.AvatarURL,
	}

	created, err := h.students.CreateStudent(c.Request.Context(), student)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create student"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ListStudents returns the calling parent's children.
func (h *StudentHandler) ListStudents(c *gin.Context) {
	students, err := h.students.ListStudentsForParent(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load students"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"students": students})
}

// GetStudent returns one of the calling parent's children.
func (h *StudentHandler) GetStudent(c *gin.Context) {
	student, err := h.students.GetStudent(c.Request.Context(), c.Param("student_id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrStudentNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "student not found"})
		return
	}
	if student.ParentID != c.GetString("userID") {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the student's parent"})
		return
	}

	c.JSON(http.StatusOK, student)
}

// UpdateStudent applies a parent edit.
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dob, err := parseDateOfBirth(req.DateOfBirth)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_of_birth, expected YYYY-MM-DD"})
		return
	}

	student := models.Student{
		ID:          c.Param("student_id"),
		ParentID:    c.GetString("userID"),
		FullName:    req.FullName,
		GradeLevel:  req.GradeLevel,
		DateOfBirth: dob,
		Subjects:    req.Subjects,
		AvatarURL:   req.AvatarURL,
	}

	updated, err := h.students.UpdateStudent(c.Request.Context(), student)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrStudentNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not update student"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteStudent removes a child by explicit parent action.
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	err := h.students.DeleteStudent(c.Request.Context(), c.Param("student_id"), c.GetString("userID"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrStudentNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not delete student"})
		return
	}

	c.Status(http.StatusNoContent)
}

func parseDateOfBirth(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
