package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatRoom is a conversation between two users about one subject item.
type ChatRoom struct {
	Id            uuid.UUID
	User1Id       uuid.UUID
	User2Id       uuid.UUID
	SubjectId     uuid.UUID
	User1HiddenAt *time.Time
	User2HiddenAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Slot returns 1 or 2 for a participant, 0 otherwise.
func (r *ChatRoom) Slot(userId uuid.UUID) int {
	switch userId {
	case r.User1Id:
		return 1
	case r.User2Id:
		return 2
	default:
		return 0
	}
}

func (r *ChatRoom) IsParticipant(userId uuid.UUID) bool {
	return r.Slot(userId) != 0
}

func (r *ChatRoom) FullyHidden() bool {
	return r.User1HiddenAt != nil && r.User2HiddenAt != nil
}

// HiddenFor reports whether the participant has hidden the room.
func (r *ChatRoom) HiddenFor(userId uuid.UUID) bool {
	switch r.Slot(userId) {
	case 1:
		return r.User1HiddenAt != nil
	case 2:
		return r.User2HiddenAt != nil
	default:
		return false
	}
}

// SetHidden stamps or clears the participant's hidden timestamp.
func (r *ChatRoom) SetHidden(userId uuid.UUID, hidden bool, now time.Time) {
	var ts *time.Time
	if hidden {
		t := now
		ts = &t
	}
	switch r.Slot(userId) {
	case 1:
		r.User1HiddenAt = ts
	case 2:
		r.User2HiddenAt = ts
	}
}

// Channel is the broadcast channel for the room.
func (r *ChatRoom) Channel() string {
	return RoomChannel(r.Id)
}

func RoomChannel(roomId uuid.UUID) string {
	return "chat_" + roomId.String()
}
