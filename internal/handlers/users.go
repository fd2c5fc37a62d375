package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"tuition-service/internal/repositories"
	"tuition-service/internal/telemetry"
)

// UserHandler manages profile and account endpoints.
type UserHandler struct {
	users   repositories.UserRepository
	emitter *telemetry.Emitter
}

// NewUserHandler builds a UserHandler.
func NewUserHandler(users repositories.UserRepository, emitter *telemetry.Emitter) *UserHandler {
	return &UserHandler{users: users, emitter: emitter}
}

// GetMe returns the caller's profile.
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateMe applies a profile edit for the caller.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req struct {
		FullName  string  `json:"full_name" binding:"required"`
		AvatarURL *string `json:"avatar_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), c.GetString("userID"), req.FullName, req.AvatarURL)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not update profile"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// Deactivate disables an account. Accounts are never hard-deleted.
func (h *UserHandler) Deactivate(c *gin.Context) {
	targetID := c.Param("user_id")
	if err := h.users.Deactivate(c.Request.Context(), targetID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not deactivate user"})
		return
	}

	h.emitter.EmitAudit(c.Request.Context(), "WARN",
		fmt.Sprintf("user deactivated target=%s", targetID),
		requestIDFromContext(c), userIDFromContext(c))
	c.Status(http.StatusNoContent)
}
