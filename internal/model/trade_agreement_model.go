package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TradeAgreement struct {
	Id              uuid.UUID                   `gorm:"type:char(36);primaryKey"`
	ChatRoomId      uuid.UUID                   `gorm:"type:char(36);not null;uniqueIndex"`
	User1Accepted   bool                        `gorm:"not null;default:false"`
	User2Accepted   bool                        `gorm:"not null;default:false"`
	State           string                      `gorm:"type:varchar(20);not null;default:'pending'"`
	Transcript      datatypes.JSONSlice[string] `gorm:"not null"`
	CompletedAt     *time.Time
	RewardGrantedAt *time.Time
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`

	ChatRoom *ChatRoom `gorm:"foreignKey:ChatRoomId;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (TradeAgreement) TableName() string {
	return "trade_agreements"
}
