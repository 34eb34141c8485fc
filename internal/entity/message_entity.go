package entity

import (
	"time"

	"github.com/google/uuid"
)

type MessageKind string

const (
	MessageKindText  MessageKind = "text"
	MessageKindImage MessageKind = "image"
)

// Message is ephemeral chat content; the janitor removes it after the retention window.
type Message struct {
	Id         uuid.UUID
	ChatRoomId uuid.UUID
	SenderId   uuid.UUID
	Kind       MessageKind
	Content    string
	MediaURL   *string
	CreatedAt  time.Time
}
