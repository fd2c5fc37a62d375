package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tuition-service/internal/messaging"
	"tuition-service/internal/mocks"
	"tuition-service/internal/models"
	"tuition-service/internal/repositories"
)

type messagingMocks struct {
	convRepo    *mocks.ConversationRepositoryMock
	msgRepo     *mocks.MessageRepositoryMock
	userRepo    *mocks.UserRepositoryMock
	studentRepo *mocks.StudentRepositoryMock
}

func setupMessagingRouter(userID, role string) (*gin.Engine, messagingMocks) {
	gin.SetMode(gin.TestMode)

	m := messagingMocks{
		convRepo:    new(mocks.ConversationRepositoryMock),
		msgRepo:     new(mocks.MessageRepositoryMock),
		userRepo:    new(mocks.UserRepositoryMock),
		studentRepo: new(mocks.StudentRepositoryMock),
	}
	service := messaging.NewService(m.convRepo, m.msgRepo, m.userRepo, m.studentRepo, nil)
	handler := NewMessagingHandler(service, nil)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("role", role)
		c.Next()
	})
	r.GET("/conversations", handler.ListConversations)
	r.POST("/conversations", handler.StartConversation)
	r.GET("/conversations/:conversation_id/messages", handler.GetMessages)
	r.POST("/conversations/:conversation_id/messages", handler.PostMessage)
	r.POST("/conversations/:conversation_id/read", handler.MarkRead)
	r.POST("/notifications/progress-update", handler.SendProgressUpdate)
	r.POST("/notifications/lesson-reminder", handler.SendLessonReminder)
	return r, m
}

func TestListConversationsSuccess(t *testing.T) {
	router, m := setupMessagingRouter("parent-1", "parent")

	m.convRepo.On("ListConversationsForUser", mock.Anything, "parent-1").Return([]models.Conversation{
		{ID: "conv-1", Participant1ID: "parent-1", Participant2ID: "tutor-1"},
	}, nil).Once()
	m.userRepo.On("BulkUsers", mock.Anything, []string{"tutor-1"}).Return([]models.User{
		{ID: "tutor-1", FullName: "Tina Tutor", Role: "tutor", Email: "tina@example.com"},
	}, nil).Once()
	m.msgRepo.On("CountUnreadForUser", mock.Anything, "parent-1").Return(map[string]int{"conv-1": 2}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Conversations []models.ConversationDetails `json:"conversations"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Conversations, 1)
	assert.Equal(t, 2, resp.Conversations[0].UnreadCount)
	assert.Equal(t, "Tina Tutor", resp.Conversations[0].OtherParticipantName)
	m.convRepo.AssertExpectations(t)
}

func TestListConversationsRepoError(t *testing.T) {
	router, m := setupMessagingRouter("parent-1", "parent")

	m.convRepo.On("ListConversationsForUser", mock.Anything, "parent-1").Return(([]models.Conversation)(nil), assert.AnError).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// a failed fetch is an error, not an empty inbox
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	m.convRepo.AssertExpectations(t)
}

func TestStartConversationSuccess(t *testing.T) {
	router, m := setupMessagingRouter("parent-1", "parent")

	existing := models.Conversation{ID: "conv-7", Participant1ID: "parent-1", Participant2ID: "tutor-1"}
	m.convRepo.On("FindByParticipants", mock.Anything, "parent-1", "tutor-1").Return(existing, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations", bytes.NewBufferString(`{"participant_id":"tutor-1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "conv-7", resp["conversation_id"])
	m.convRepo.AssertExpectations(t)
}

func TestStartConversationWithSelf(t *testing.T) {
	router, _ := setupMessagingRouter("parent-1", "parent")

	req := httptest.NewRequest(http.MethodPost, "/conversations", bytes.NewBufferString(`{"participant_id":"parent-1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMessagesForbiddenForNonParticipant(t *testing.T) {
	router, m := setupMessagingRouter("intruder", "parent")

	conv := models.Conversation{ID: "conv-1", Participant1ID: "parent-1", Participant2ID: "tutor-1"}
	m.convRepo.On("GetConversation", mock.Anything, "conv-1").Return(conv, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations/conv-1/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	m.msgRepo.AssertNotCalled(t, "ListMessages", mock.Anything, mock.Anything)
}

func TestGetMessagesSuccess(t *testing.T) {
	router, m := setupMessagingRouter("parent-1", "parent")

	conv := models.Conversation{ID: "conv-1", Participant1ID: "parent-1", Participant2ID: "tutor-1"}
	m.convRepo.On("GetConversation", mock.Anything, "conv-1").Return(conv, nil).Once()
	m.msgRepo.On("ListMessages", mock.Anything, "conv-1").Return([]models.Message{
		{ID: "m1", ConversationID: "conv-1", SenderID: "tutor-1", Content: "hi"},
	}, nil).Once()
	m.userRepo.On("BulkUsers", mock.Anything, []string{"tutor-1"}).Return([]models.User{
		{ID: "tutor-1", FullName: "Tina Tutor", Role: "tutor"},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations/conv-1/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	m.msgRepo.AssertExpectations(t)
}

func TestPostMessageSuccess(t *testing.T) {
	router, m := setupMessagingRouter("tutor-1", "tutor")

	conv := models.Conversation{ID: "conv-1", Participant1ID: "parent-1", Participant2ID: "tutor-1"}
	m.convRepo.On("GetConversation", mock.Anything, "conv-1").Return(conv, nil).Once()
	m.msgRepo.On("CreateMessage", mock.Anything, "conv-1", "tutor-1", "parent-1", "hi").
		Return(models.Message{ID: "m1", ConversationID: "conv-1", SenderID: "tutor-1", ReceiverID: "parent-1", Content: "hi"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations/conv-1/messages",
		bytes.NewBufferString(`{"receiver_id":"parent-1","content":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	m.msgRepo.AssertExpectations(t)
}

func TestPostMessageNotParticipant(t *testing.T) {
	router, m := setupMessagingRouter("intruder", "parent")

	conv := models.Conversation{ID: "conv-1", Participant1ID: "parent-1", Participant2ID: "tutor-1"}
	m.convRepo.On("GetConversation", mock.Anything, "conv-1").Return(conv, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations/conv-1/messages",
		bytes.NewBufferString(`{"receiver_id":"tutor-1","content":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPostMessageConversationMissing(t *testing.T) {
	router, m := setupMessagingRouter("tutor-1", "tutor")

	m.convRepo.On("GetConversation", mock.Anything, "missing").Return(models.Conversation{}, repositories.ErrConversationNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations/missing/messages",
		bytes.NewBufferString(`{"receiver_id":"parent-1","content":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMarkReadSuccess(t *testing.T) {
	router, m := setupMessagingRouter("parent-1", "parent")

	conv := models.Conversation{ID: "conv-1", Participant1ID: "parent-1", Participant2ID: "tutor-1"}
	m.convRepo.On("GetConversation", mock.Anything, "conv-1").Return(conv, nil).Once()
	m.msgRepo.On("MarkRead", mock.Anything, "conv-1", "parent-1").Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations/conv-1/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	m.msgRepo.AssertExpectations(t)
}

func TestSendProgressUpdateEndpoint(t *testing.T) {
	router, m := setupMessagingRouter("tutor-1", "tutor")

	m.studentRepo.On("GetStudent", mock.Anything, "student-1").Return(models.Student{ID: "student-1", FullName: "Sam Student"}, nil).Once()
	existing := models.Conversation{ID: "conv-1", Participant1ID: "parent-1", Participant2ID: "tutor-1"}
	m.convRepo.On("FindByParticipants", mock.Anything, "tutor-1", "parent-1").Return(existing, nil).Once()
	m.msgRepo.On("CreateMessage", mock.Anything, "conv-1", "tutor-1", "parent-1", mock.Anything).
		Return(models.Message{ID: "m1"}, nil).Once()

	body := bytes.NewBufferString(`{"parent_id":"parent-1","student_id":"student-1","subject":"Math","progress":"85% avg"}`)
	req := httptest.NewRequest(http.MethodPost, "/notifications/progress-update", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	m.msgRepo.AssertExpectations(t)
}

func TestSendLessonReminderUnknownStudent(t *testing.T) {
	router, m := setupMessagingRouter("tutor-1", "tutor")

	m.studentRepo.On("GetStudent", mock.Anything, "missing").Return(models.Student{}, repositories.ErrStudentNotFound).Once()

	body := bytes.NewBufferString(`{"parent_id":"parent-1","student_id":"missing","lesson":{"subject":"Math","date":"2025-04-01","time":"16:00","duration_min":60,"type":"online"}}`)
	req := httptest.NewRequest(http.MethodPost, "/notifications/lesson-reminder", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
