package models

import "time"

// Message is one unit of communication within exactly one conversation.
// A message is unread until read_at is set, a one-way transition.
type Message struct {
	ID             string     `db:"id" json:"id"`
	ConversationID string     `db:"conversation_id" json:"conversation_id"`
	SenderID       string     `db:"sender_id" json:"sender_id"`
	ReceiverID     string     `db:"receiver_id" json:"receiver_id"`
	Content        string     `db:"content" json:"content"`
	ReadAt         *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// MessageDetails enriches a message with sender identity for display.
type MessageDetails struct {
	Message
	SenderName string `json:"sender_name"`
	SenderRole string `json:"sender_role"`
}

// LessonDetails describes a scheduled lesson referenced by a reminder.
type LessonDetails struct {
	Subject     string `json:"subject"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	DurationMin int    `json:"duration_min"`
	Type        string `json:"type"`
}
