package entity

import (
	"time"

	"github.com/google/uuid"
)

type SwapCoinReason string

const (
	SwapCoinReasonFirstTrade SwapCoinReason = "first_trade_bonus"
	SwapCoinReasonLoyalty    SwapCoinReason = "loyalty_bonus"
)

// SwapCoinTransaction journals a balance change.
type SwapCoinTransaction struct {
	Id         uuid.UUID
	UserId     uuid.UUID
	ChatRoomId *uuid.UUID
	Amount     int64
	Reason     SwapCoinReason
	CreatedAt  time.Time
}

// RewardGrant is the outcome of one user's completion reward.
type RewardGrant struct {
	UserId              uuid.UUID
	CompletedTradeCount int
	Bonus               int64
	Reason              SwapCoinReason // empty when no bonus applied
	SwapCoinBalance     int64
}
