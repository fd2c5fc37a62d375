package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tuition-service/internal/models"
	"tuition-service/internal/repositories"
)

type ConversationRepositoryMock struct {
	mock.Mock
}

func (m *ConversationRepositoryMock) GetConversation(ctx context.Context, conversationID string) (models.Conversation, error) {
	args := m.Called(ctx, conversationID)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) FindByParticipants(ctx context.Context, userA, userB string) (models.Conversation, error) {
	args := m.Called(ctx, userA, userB)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) CreateConversation(ctx context.Context, userA, userB string, relatedStudentID *string) (models.Conversation, error) {
	args := m.Called(ctx, userA, userB, relatedStudentID)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) ListConversationsForUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	args := m.Called(ctx, userID)
	var list []models.Conversation
	if val := args.Get(0); val != nil {
		list = val.([]models.Conversation)
	}
	return list, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, conversationID, senderID, receiverID, content string) (models.Message, error) {
	args := m.Called(ctx, conversationID, senderID, receiverID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	args := m.Called(ctx, conversationID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) CountUnreadForUser(ctx context.Context, userID string) (map[string]int, error) {
	args := m.Called(ctx, userID)
	var counts map[string]int
	if val := args.Get(0); val != nil {
		counts = val.(map[string]int)
	}
	return counts, args.Error(1)
}

func (m *MessageRepositoryMock) MarkRead(ctx context.Context, conversationID, userID string) error {
	args := m.Called(ctx, conversationID, userID)
	return args.Error(0)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, userID string) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) BulkUsers(ctx context.Context, ids []string) ([]models.User, error) {
	args := m.Called(ctx, ids)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

func (m *UserRepositoryMock) UpdateProfile(ctx context.Context, userID string, fullName string, avatarURL *string) (models.User, error) {
	args := m.Called(ctx, userID, fullName, avatarURL)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) Deactivate(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type StudentRepositoryMock struct {
	mock.Mock
}

func (m *StudentRepositoryMock) CreateStudent(ctx context.Context, student models.Student) (models.Student, error) {
	args := m.Called(ctx, student)
	var created models.Student
	if val := args.Get(0); val != nil {
		created = val.(models.Student)
	}
	return created, args.Error(1)
}

func (m *StudentRepositoryMock) GetStudent(ctx context.Context, studentID string) (models.Student, error) {
	args := m.Called(ctx, studentID)
	var student models.Student
	if val := args.Get(0); val != nil {
		student = val.(models.Student)
	}
	return student, args.Error(1)
}

func (m *StudentRepositoryMock) ListStudentsForParent(ctx context.Context, parentID string) ([]models.Student, error) {
	args := m.Called(ctx, parentID)
	var students []models.Student
	if val := args.Get(0); val != nil {
		students = val.([]models.Student)
	}
	return students, args.Error(1)
}

func (m *StudentRepositoryMock) UpdateStudent(ctx context.Context, student models.Student) (models.Student, error) {
	args := m.Called(ctx, student)
	var updated models.Student
	if val := args.Get(0); val != nil {
		updated = val.(models.Student)
	}
	return updated, args.Error(1)
}

func (m *StudentRepositoryMock) DeleteStudent(ctx context.Context, studentID string, parentID string) error {
	args := m.Called(ctx, studentID, parentID)
	return args.Error(0)
}

var _ repositories.ConversationRepository = (*ConversationRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.StudentRepository = (*StudentRepositoryMock)(nil)
