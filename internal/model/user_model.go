package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id                  uuid.UUID `gorm:"type:char(36);primaryKey"`
	Username            string    `gorm:"type:varchar(255);not null"`
	Email               string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Role                string    `gorm:"type:varchar(50);not null;default:'user'"`
	SwapCoinBalance     int64     `gorm:"not null;default:0"`
	CompletedTradeCount int       `gorm:"not null;default:0"`
	CreatedAt           time.Time `gorm:"autoCreateTime"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
