package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MessageType classifies message content.
type MessageType string

const (
	MessageTypeText       MessageType = "Text"
	MessageTypeImage      MessageType = "Image"
	MessageTypeVideo      MessageType = "Video"
	MessageTypeAudio      MessageType = "Audio"
	MessageTypeFile       MessageType = "File"
	MessageTypeSystem     MessageType = "System"
	MessageTypeCallSignal MessageType = "CallSignal"
)

// ParseMessageType maps a wire string to a MessageType. Unrecognized
// values fall back to Text.
func ParseMessageType(s string) MessageType {
	switch MessageType(s) {
	case MessageTypeImage, MessageTypeVideo, MessageTypeAudio,
		MessageTypeFile, MessageTypeSystem, MessageTypeCallSignal:
		return MessageType(s)
	default:
		return MessageTypeText
	}
}

var ErrSelfDestructInPast = errors.New("self destruct duration must be positive")

// Message represents a chat message. SenderID is nil for system messages.
// Once IsDeleted is set the row remains as a tombstone with empty content.
type Message struct {
	ID             uuid.UUID   `db:"id" json:"id"`
	ConversationID uuid.UUID   `db:"conversation_id" json:"conversation_id"`
	SenderID       *uuid.UUID  `db:"sender_id" json:"sender_id,omitempty"`
	Content        string      `db:"content" json:"content"`
	Type           MessageType `db:"type" json:"message_type"`
	IsEncrypted    bool        `db:"is_encrypted" json:"is_encrypted"`
	ReplyToID      *uuid.UUID  `db:"reply_to_id" json:"reply_to_id,omitempty"`
	SelfDestructAt *time.Time  `db:"self_destruct_at" json:"self_destruct_at,omitempty"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
	IsDeleted      bool        `db:"is_deleted" json:"is_deleted"`
}

// NewMessage builds a message with a fresh id and creation timestamp.
func NewMessage(conversationID, senderID uuid.UUID, content string, messageType MessageType) Message {
	sender := senderID
	return Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       &sender,
		Content:        content,
		Type:           messageType,
		IsEncrypted:    true,
		CreatedAt:      time.Now().UTC(),
	}
}

// WithSelfDestruct arms the message to expire durationSeconds after creation.
func (m Message) WithSelfDestruct(durationSeconds int64) (Message, error) {
	if durationSeconds <= 0 {
		return m, ErrSelfDestructInPast
	}
	at := m.CreatedAt.Add(time.Duration(durationSeconds) * time.Second)
	m.SelfDestructAt = &at
	return m, nil
}

// IsExpired reports whether the self-destruct deadline has elapsed.
func (m Message) IsExpired(now time.Time) bool {
	return m.SelfDestructAt != nil && now.After(*m.SelfDestructAt)
}
