package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"tuition-service/internal/messaging"
	"tuition-service/internal/models"
	"tuition-service/internal/repositories"
	"tuition-service/internal/telemetry"
)

// MessagingHandler manages conversation and message endpoints.
type MessagingHandler struct {
	service *messaging.Service
	emitter *telemetry.Emitter
}

// NewMessagingHandler builds a MessagingHandler.
func NewMessagingHandler(service *messaging.Service, emitter *telemetry.Emitter) *MessagingHandler {
	return &MessagingHandler{service: service, emitter: emitter}
}

// ListConversations returns the caller's inbox view.
func (h *MessagingHandler) ListConversations(c *gin.Context) {
	userID := c.GetString("userID")
	role := c.GetString("role")

	conversations, err := h.service.ListConversations(c.Request.Context(), userID, role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// StartConversation creates or returns the conversation with another user.
func (h *MessagingHandler) StartConversation(c *gin.Context) {
	var req struct {
		ParticipantID    string  `json:"participant_id" binding:"required"`
		RelatedStudentID *string `json:"related_student_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("userID")
	conversationID, err := h.service.EnsureConversation(c.Request.Context(), userID, req.ParticipantID, req.RelatedStudentID)
	if err != nil {
		if errors.Is(err, messaging.ErrSelfConversation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot start a conversation with yourself"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start conversation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversation_id": conversationID})
}

// GetMessages returns all messages of a conversation for a participant.
func (h *MessagingHandler) GetMessages(c *gin.Context) {
	conversationID := c.Param("conversation_id")
	userID := c.GetString("userID")

	if _, ok := h.requireParticipant(c, conversationID, userID); !ok {
		return
	}

	messages, err := h.service.ListMessages(c.Request.Context(), conversationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// PostMessage stores a message in a conversation.
func (h *MessagingHandler) PostMessage(c *gin.Context) {
	conversationID := c.Param("conversation_id")
	userID := c.GetString("userID")

	var req struct {
		ReceiverID string `json:"receiver_id" binding:"required"`
		Content    string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.service.SendMessage(c.Request.Context(), conversationID, userID, req.ReceiverID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, messaging.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "message content is empty"})
		case errors.Is(err, messaging.ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation participant"})
		case errors.Is(err, repositories.ErrConversationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		}
		return
	}

	h.emitter.EmitAudit(c.Request.Context(), "INFO",
		fmt.Sprintf("message sent conversation=%s", conversationID),
		requestIDFromContext(c), userIDFromContext(c))
	c.JSON(http.StatusCreated, msg)
}

// MarkRead marks all messages addressed to the caller as read.
func (h *MessagingHandler) MarkRead(c *gin.Context) {
	conversationID := c.Param("conversation_id")
	userID := c.GetString("userID")

	if _, ok := h.requireParticipant(c, conversationID, userID); !ok {
		return
	}

	if err := h.service.MarkMessagesRead(c.Request.Context(), conversationID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark messages read"})
		return
	}

	c.Status(http.StatusNoContent)
}

// SendProgressUpdate sends a templated progress message to the parent.
func (h *MessagingHandler) SendProgressUpdate(c *gin.Context) {
	var req struct {
		ParentID  string `json:"parent_id" binding:"required"`
		StudentID string `json:"student_id" binding:"required"`
		Subject   string `json:"subject" binding:"required"`
		Progress  string `json:"progress" binding:"required"`
		Notes     string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tutorID := c.GetString("userID")
	err := h.service.SendProgressUpdate(c.Request.Context(), tutorID, req.ParentID, req.StudentID, req.Subject, req.Progress, req.Notes)
	if err != nil {
		h.notificationError(c, err)
		return
	}

	h.emitter.EmitAudit(c.Request.Context(), "INFO",
		fmt.Sprintf("progress update sent student=%s", req.StudentID),
		requestIDFromContext(c), userIDFromContext(c))
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

// SendLessonReminder sends a templated lesson reminder to the parent.
func (h *MessagingHandler) SendLessonReminder(c *gin.Context) {
	var req struct {
		ParentID  string               `json:"parent_id" binding:"required"`
		StudentID string               `json:"student_id" binding:"required"`
		Lesson    models.LessonDetails `json:"lesson" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tutorID := c.GetString("userID")
	err := h.service.SendLessonReminder(c.Request.Context(), tutorID, req.ParentID, req.StudentID, req.Lesson)
	if err != nil {
		h.notificationError(c, err)
		return
	}

	h.emitter.EmitAudit(c.Request.Context(), "INFO",
		fmt.Sprintf("lesson reminder sent student=%s", req.StudentID),
		requestIDFromContext(c), userIDFromContext(c))
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

func (h *MessagingHandler) requireParticipant(c *gin.Context, conversationID, userID string) (models.Conversation, bool) {
	conv, err := h.service.GetConversation(c.Request.Context(), conversationID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrConversationNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "conversation not found"})
		return models.Conversation{}, false
	}
	if !conv.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation participant"})
		return models.Conversation{}, false
	}
	return conv, true
}

func (h *MessagingHandler) notificationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repositories.ErrStudentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
	case errors.Is(err, messaging.ErrSelfConversation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "tutor and parent must differ"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send notification"})
	}
}
