package model

import (
	"time"

	"github.com/google/uuid"
)

type SwapCoinTransaction struct {
	Id         uuid.UUID  `gorm:"type:char(36);primaryKey"`
	UserId     uuid.UUID  `gorm:"type:char(36);not null;index"`
	ChatRoomId *uuid.UUID `gorm:"type:char(36);index"`
	Amount     int64      `gorm:"not null"`
	Reason     string     `gorm:"type:varchar(50);not null"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;not null"`
}

func (SwapCoinTransaction) TableName() string {
	return "swap_coin_transactions"
}
