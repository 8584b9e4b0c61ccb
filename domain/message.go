package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is an immutable chat entry. The sender is a display name, not a
// stable user id.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	IsSystem  bool      `json:"isSystem,omitempty"`
}

func NewMessage(sender, content string) Message {
	return Message{
		ID:        uuid.New(),
		Sender:    sender,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

const systemSender = "System"

// NewSystemMessage builds a system notice (join/leave/room-created
// announcements). System notices are rendered locally and persisted with the
// room, but never relayed through the event bus.
func NewSystemMessage(content string) Message {
	m := NewMessage(systemSender, content)
	m.IsSystem = true
	return m
}
