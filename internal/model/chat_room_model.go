package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatRoom struct {
	Id            uuid.UUID `gorm:"type:char(36);primaryKey"`
	User1Id       uuid.UUID `gorm:"type:char(36);not null;index:idx_chat_rooms_pair_subject,priority:1"`
	User2Id       uuid.UUID `gorm:"type:char(36);not null;index:idx_chat_rooms_pair_subject,priority:2"`
	SubjectId     uuid.UUID `gorm:"type:char(36);not null;index:idx_chat_rooms_pair_subject,priority:3"`
	User1HiddenAt *time.Time
	User2HiddenAt *time.Time
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (ChatRoom) TableName() string {
	return "chat_rooms"
}
