package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"tuition-service/internal/models"
	"tuition-service/internal/observability"
	"tuition-service/internal/repositories"
	"tuition-service/internal/telemetry"
)

var (
	// ErrEmptyMessage is returned when the trimmed content is blank.
	ErrEmptyMessage = errors.New("message content is empty")
	// ErrNotParticipant is returned when sender/receiver do not match the
	// conversation's participant pair.
	ErrNotParticipant = errors.New("sender or receiver is not a conversation participant")
	// ErrSelfConversation is returned for a pair of identical ids.
	ErrSelfConversation = errors.New("cannot start a conversation with yourself")
)

var tracer = otel.Tracer("tuition-service/messaging")

// Service provides conversation and message operations for the tuition
// marketplace. All dependencies are injected so tests can substitute fakes.
type Service struct {
	conversations repositories.ConversationRepository
	messages      repositories.MessageRepository
	users         repositories.UserRepository
	students      repositories.StudentRepository
	emitter       *telemetry.Emitter
}

// NewService constructs a Service.
func NewService(
	conversations repositories.ConversationRepository,
	messages repositories.MessageRepository,
	users repositories.UserRepository,
	students repositories.StudentRepository,
	emitter *telemetry.Emitter,
) *Service {
	return &Service{
		conversations: conversations,
		messages:      messages,
		users:         users,
		students:      students,
		emitter:       emitter,
	}
}

// ListConversations returns every conversation the user takes part in,
// most recently updated first, enriched with the other participant's
// identity and the unread counter. The role argument is accepted for API
// compatibility but does not filter the result.
func (s *Service) ListConversations(ctx context.Context, userID, role string) ([]models.ConversationDetails, error) {
	ctx, span := tracer.Start(ctx, "messaging.ListConversations")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID), attribute.String("user.role", role))

	convs, err := s.conversations.ListConversationsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	otherIDs := make([]string, 0, len(convs))
	for _, conv := range convs {
		otherIDs = append(otherIDs, conv.OtherParticipant(userID))
	}
	others, err := s.users.BulkUsers(ctx, otherIDs)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	userByID := make(map[string]models.User, len(others))
	for _, u := range others {
		userByID[u.ID] = u
	}

	unread, err := s.messages.CountUnreadForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count unread: %w", err)
	}

	details := make([]models.ConversationDetails, 0, len(convs))
	for _, conv := range convs {
		otherID := conv.OtherParticipant(userID)
		other := userByID[otherID]
		details = append(details, models.ConversationDetails{
			Conversation:          conv,
			OtherParticipantID:    otherID,
			OtherParticipantName:  other.FullName,
			OtherParticipantRole:  other.Role,
			OtherParticipantEmail: other.Email,
			UnreadCount:           unread[conv.ID],
		})
	}
	return details, nil
}

// GetConversation fetches a single conversation.
func (s *Service) GetConversation(ctx context.Context, conversationID string) (models.Conversation, error) {
	return s.conversations.GetConversation(ctx, conversationID)
}

// ListMessages returns all messages of a conversation, oldest first,
// enriched with sender identity.
func (s *Service) ListMessages(ctx context.Context, conversationID string) ([]models.MessageDetails, error) {
	ctx, span := tracer.Start(ctx, "messaging.ListMessages")
	defer span.End()

	msgs, err := s.messages.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	senderIDs := make([]string, 0, len(msgs))
	seen := map[string]struct{}{}
	for _, m := range msgs {
		if _, ok := seen[m.SenderID]; !ok {
			seen[m.SenderID] = struct{}{}
			senderIDs = append(senderIDs, m.SenderID)
		}
	}
	senders, err := s.users.BulkUsers(ctx, senderIDs)
	if err != nil {
		return nil, fmt.Errorf("load senders: %w", err)
	}
	senderByID := make(map[string]models.User, len(senders))
	for _, u := range senders {
		senderByID[u.ID] = u
	}

	details := make([]models.MessageDetails, 0, len(msgs))
	for _, m := range msgs {
		sender := senderByID[m.SenderID]
		details = append(details, models.MessageDetails{
			Message:    m,
			SenderName: sender.FullName,
			SenderRole: sender.Role,
		})
	}
	return details, nil
}

// SendMessage stores a trimmed message after validating that sender and
// receiver are exactly the conversation's participant pair. The message row
// and the conversation preview are written atomically by the repository.
func (s *Service) SendMessage(ctx context.Context, conversationID, senderID, receiverID, content string) (models.Message, error) {
	ctx, span := tracer.Start(ctx, "messaging.SendMessage")
	defer span.End()
	span.SetAttributes(attribute.String("conversation.id", conversationID))

	content = strings.TrimSpace(content)
	if content == "" {
		return models.Message{}, ErrEmptyMessage
	}

	conv, err := s.conversations.GetConversation(ctx, conversationID)
	if err != nil {
		return models.Message{}, err
	}
	if !conv.HasParticipant(senderID) || !conv.HasParticipant(receiverID) || senderID == receiverID {
		return models.Message{}, ErrNotParticipant
	}

	msg, err := s.messages.CreateMessage(ctx, conversationID, senderID, receiverID, content)
	if err != nil {
		return models.Message{}, fmt.Errorf("create message: %w", err)
	}

	observability.IncMessageSent("direct")
	s.emitter.EmitEvent(ctx, "message.sent", &senderID, map[string]any{
		"message_id":      msg.ID,
		"conversation_id": msg.ConversationID,
		"receiver_id":     msg.ReceiverID,
	})
	return msg, nil
}

// EnsureConversation returns the id of the conversation for the unordered
// pair, creating it when absent. A lost duplicate-create race is recovered
// by re-reading the winner, so both callers resolve to the same id.
func (s *Service) EnsureConversation(ctx context.Context, userA, userB string, relatedStudentID *string) (string, error) {
	ctx, span := tracer.Start(ctx, "messaging.EnsureConversation")
	defer span.End()

	if userA == userB {
		return "", ErrSelfConversation
	}

	conv, err := s.conversations.FindByParticipants(ctx, userA, userB)
	if err == nil {
		return conv.ID, nil
	}
	if !errors.Is(err, repositories.ErrConversationNotFound) {
		return "", fmt.Errorf("find conversation: %w", err)
	}

	conv, err = s.conversations.CreateConversation(ctx, userA, userB, relatedStudentID)
	if err == nil {
		observability.IncConversationCreated()
		return conv.ID, nil
	}
	if errors.Is(err, repositories.ErrDuplicatePair) {
		conv, err = s.conversations.FindByParticipants(ctx, userA, userB)
	}
	if err != nil {
		return "", fmt.Errorf("create conversation: %w", err)
	}
	return conv.ID, nil
}

// MarkMessagesRead marks everything addressed to the user in the
// conversation as read. Idempotent: already-read messages are untouched.
func (s *Service) MarkMessagesRead(ctx context.Context, conversationID, userID string) error {
	ctx, span := tracer.Start(ctx, "messaging.MarkMessagesRead")
	defer span.End()

	if err := s.messages.MarkRead(ctx, conversationID, userID); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	observability.IncMessagesMarkedRead()
	return nil
}

// SendProgressUpdate ensures a tutor-parent conversation scoped to the
// student and sends a templated progress message as the tutor.
func (s *Service) SendProgressUpdate(ctx context.Context, tutorID, parentID, studentID, subject, progress, notes string) error {
	ctx, span := tracer.Start(ctx, "messaging.SendProgressUpdate")
	defer span.End()

	student, err := s.students.GetStudent(ctx, studentID)
	if err != nil {
		return err
	}

	content := fmt.Sprintf("Progress update for %s in %s: %s", student.FullName, subject, progress)
	if notes = strings.TrimSpace(notes); notes != "" {
		content += "\nNotes: " + notes
	}

	if err := s.sendTemplated(ctx, tutorID, parentID, studentID, content, "progress_update"); err != nil {
		return err
	}

	s.emitter.EmitEvent(ctx, "notification.progress_update", &tutorID, map[string]any{
		"student_id": studentID,
		"parent_id":  parentID,
		"subject":    subject,
	})
	return nil
}

// SendLessonReminder ensures a tutor-parent conversation scoped to the
// student and sends a templated lesson reminder as the tutor.
func (s *Service) SendLessonReminder(ctx context.Context, tutorID, parentID, studentID string, lesson models.LessonDetails) error {
	ctx, span := tracer.Start(ctx, "messaging.SendLessonReminder")
	defer span.End()

	student, err := s.students.GetStudent(ctx, studentID)
	if err != nil {
		return err
	}

	content := fmt.Sprintf("Lesson reminder for %s: %s on %s at %s (%d min, %s)",
		student.FullName, lesson.Subject, lesson.Date, lesson.Time, lesson.DurationMin, lesson.Type)

	if err := s.sendTemplated(ctx, tutorID, parentID, studentID, content, "lesson_reminder"); err != nil {
		return err
	}

	s.emitter.EmitEvent(ctx, "notification.lesson_reminder", &tutorID, map[string]any{
		"student_id": studentID,
		"parent_id":  parentID,
		"subject":    lesson.Subject,
	})
	return nil
}

func (s *Service) sendTemplated(ctx context.Context, tutorID, parentID, studentID, content, kind string) error {
	conversationID, err := s.EnsureConversation(ctx, tutorID, parentID, &studentID)
	if err != nil {
		return err
	}
	if _, err := s.messages.CreateMessage(ctx, conversationID, tutorID, parentID, content); err != nil {
		return fmt.Errorf("create %s message: %w", kind, err)
	}
	observability.IncMessageSent(kind)
	return nil
}
