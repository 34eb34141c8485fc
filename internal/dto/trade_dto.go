package dto

import (
	"time"

	"github.com/google/uuid"
)

type ToggleAcceptanceRequest struct {
	ChatRoomId uuid.UUID `json:"chat_room_id" validate:"required"`
}

// AppendTranscriptRequest keeps Entries as raw JSON values so a non-list or
// non-string payload can be rejected explicitly.
type AppendTranscriptRequest struct {
	Entries []interface{} `json:"entries" validate:"required"`
}

type ResetTradeRequest struct {
	ChatRoomId uuid.UUID `json:"chat_room_id" validate:"required"`
}

type TradeStatusResponse struct {
	Exists        bool       `json:"exists"`
	AgreementId   *uuid.UUID `json:"agreement_id,omitempty"`
	ChatRoomId    uuid.UUID  `json:"chat_room_id"`
	User1Id       uuid.UUID  `json:"user1_id"`
	User2Id       uuid.UUID  `json:"user2_id"`
	User1Accepted bool       `json:"user1_accepted"`
	User2Accepted bool       `json:"user2_accepted"`
	State         string     `json:"state"`
	Transcript    []string   `json:"transcript"`
	CompletedAt   *time.Time `json:"completed_at"`
	RewardGranted bool       `json:"reward_granted"`
	// RewardWarning is set when the trade completed but the reward grant failed.
	RewardWarning string `json:"reward_warning,omitempty"`
}

type ToggleAcceptanceResponse struct {
	TradeStatusResponse
	ActingUserId uuid.UUID `json:"acting_user_id"`
	Message      string    `json:"message"`
}

type AppendTranscriptResponse struct {
	TradeStatusResponse
	Added int `json:"added"`
}

// RoomEventMessage is the in-process bus payload for room broadcasts.
type RoomEventMessage struct {
	Channel string                 `json:"channel"`
	Event   string                 `json:"event"`
	Payload map[string]interface{} `json:"payload"`
}
