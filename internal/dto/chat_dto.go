package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateRoomRequest struct {
	User2Id   uuid.UUID `json:"user2_id" validate:"required"`
	SubjectId uuid.UUID `json:"subject_id" validate:"required"`
}

type SetVisibilityRequest struct {
	Hidden *bool `json:"hidden" validate:"required"`
}

type SendMessageRequest struct {
	Kind     string  `json:"kind" validate:"omitempty,oneof=text image"`
	Content  string  `json:"content" validate:"max=4000"`
	MediaURL *string `json:"media_url" validate:"omitempty,url"`
}

type ChatRoomResponse struct {
	Id        uuid.UUID  `json:"id"`
	Channel   string     `json:"channel"`
	User1Id   uuid.UUID  `json:"user1_id"`
	User2Id   uuid.UUID  `json:"user2_id"`
	SubjectId uuid.UUID  `json:"subject_id"`
	HiddenAt  *time.Time `json:"hidden_at,omitempty"`
	Reused    bool       `json:"reused"`
	CreatedAt time.Time  `json:"created_at"`
}

type VisibilityResponse struct {
	ChatRoomId uuid.UUID `json:"chat_room_id"`
	Hidden     bool      `json:"hidden"`
	Deleted    bool      `json:"deleted"`
}

type MessageResponse struct {
	Id         uuid.UUID `json:"id"`
	ChatRoomId uuid.UUID `json:"chat_room_id"`
	SenderId   uuid.UUID `json:"sender_id"`
	Kind       string    `json:"kind"`
	Content    string    `json:"content"`
	MediaURL   *string   `json:"media_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
