package model

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	Id         uuid.UUID `gorm:"type:char(36);primaryKey"`
	ChatRoomId uuid.UUID `gorm:"type:char(36);not null;index"`
	SenderId   uuid.UUID `gorm:"type:char(36);not null"`
	Kind       string    `gorm:"type:varchar(16);not null;default:'text'"`
	Content    string    `gorm:"type:text"`
	MediaURL   *string   `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index"`

	ChatRoom *ChatRoom `gorm:"foreignKey:ChatRoomId;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (Message) TableName() string {
	return "messages"
}
