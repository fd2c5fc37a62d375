package models

import "time"

// Conversation is a persistent thread between exactly two users, optionally
// scoped to one student. Participant ids are stored in lexicographic order so
// the unordered pair maps to a single row.
type Conversation struct {
	ID               string     `db:"id" json:"id"`
	Participant1ID   string     `db:"participant1_id" json:"participant1_id"`
	Participant2ID   string     `db:"participant2_id" json:"participant2_id"`
	RelatedStudentID *string    `db:"related_student_id" json:"related_student_id,omitempty"`
	LastMessage      *string    `db:"last_message" json:"last_message,omitempty"`
	LastMessageAt    *time.Time `db:"last_message_at" json:"last_message_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// ConversationDetails is the inbox view of a conversation for one user:
// the other participant's identity plus the unread counter.
type ConversationDetails struct {
	Conversation
	OtherParticipantID    string `json:"other_participant_id"`
	OtherParticipantName  string `json:"other_participant_name"`
	OtherParticipantRole  string `json:"other_participant_role"`
	OtherParticipantEmail string `json:"other_participant_email"`
	UnreadCount           int    `json:"unread_count"`
}

// HasParticipant reports whether the user is one of the two participants.
func (c Conversation) HasParticipant(userID string) bool {
	return c.Participant1ID == userID || c.Participant2ID == userID
}

// OtherParticipant returns the counterpart of the given user in the pair.
func (c Conversation) OtherParticipant(userID string) string {
	if c.Participant1ID == userID {
		return c.Participant2ID
	}
	return c.Participant1ID
}
