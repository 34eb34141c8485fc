package dto

import "github.com/google/uuid"

type BalanceResponse struct {
	UserId              uuid.UUID `json:"user_id"`
	SwapCoinBalance     int64     `json:"swap_coin_balance"`
	CompletedTradeCount int       `json:"completed_trade_count"`
}
