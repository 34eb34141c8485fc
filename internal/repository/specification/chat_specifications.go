package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByChatRoomID struct {
	ChatRoomID uuid.UUID
}

func (s ByChatRoomID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_room_id = ?", s.ChatRoomID)
}

// ByParticipantPair matches a room for the unordered pair and subject.
type ByParticipantPair struct {
	UserA     uuid.UUID
	UserB     uuid.UUID
	SubjectID uuid.UUID
}

func (s ByParticipantPair) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(
		"subject_id = ? AND ((user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?))",
		s.SubjectID, s.UserA, s.UserB, s.UserB, s.UserA,
	)
}

// ByParticipant matches rooms the user takes part in.
type ByParticipant struct {
	UserID uuid.UUID
}

func (s ByParticipant) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user1_id = ? OR user2_id = ?", s.UserID, s.UserID)
}

// VisibleTo drops rooms the user has hidden. Combine with ByParticipant.
type VisibleTo struct {
	UserID uuid.UUID
}

func (s VisibleTo) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(
		"NOT ((user1_id = ? AND user1_hidden_at IS NOT NULL) OR (user2_id = ? AND user2_hidden_at IS NOT NULL))",
		s.UserID, s.UserID,
	)
}
