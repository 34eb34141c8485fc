package events

import (
	"context"
	"time"

	"swappay-be/internal/pkg/logger"
	pkgEvents "swappay-be/pkg/events"

	"github.com/google/uuid"
)

const (
	TypeTradeCompleted    = "TRADE_COMPLETED"
	TypeSwapCoinsRewarded = "SWAPCOINS_REWARDED"
	TypeChatRoomDeleted   = "CHAT_ROOM_DELETED"
)

// Publisher emits durable marketplace domain events. Failures are logged, never returned.
type Publisher interface {
	PublishTradeCompleted(ctx context.Context, chatRoomId, agreementId, user1Id, user2Id uuid.UUID, completedAt time.Time)
	PublishSwapCoinsRewarded(ctx context.Context, chatRoomId, userId uuid.UUID, amount int64, reason string, balance int64)
	PublishChatRoomDeleted(ctx context.Context, chatRoomId, user1Id, user2Id uuid.UUID, reason string)
}

// Sink is the transport side; *nats.Publisher satisfies it.
type Sink interface {
	Publish(ctx context.Context, event pkgEvents.Event) error
}

// NatsPublisher implements Publisher on top of a Sink (normally JetStream).
type NatsPublisher struct {
	publisher Sink
	logger    logger.ILogger
}

func NewNatsPublisher(publisher Sink, logger logger.ILogger) *NatsPublisher {
	return &NatsPublisher{
		publisher: publisher,
		logger:    logger,
	}
}

func (p *NatsPublisher) emit(ctx context.Context, eventType string, data map[string]interface{}) {
	if p.publisher == nil {
		return
	}

	evt := pkgEvents.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}

	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error("MARKETPLACE_EVENTS", "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
	}
}

// PublishTradeCompleted emits TRADE_COMPLETED once an agreement reaches completed
func (p *NatsPublisher) PublishTradeCompleted(ctx context.Context, chatRoomId, agreementId, user1Id, user2Id uuid.UUID, completedAt time.Time) {
	p.emit(ctx, TypeTradeCompleted, map[string]interface{}{
		"chat_room_id": chatRoomId.String(),
		"agreement_id": agreementId.String(),
		"user1_id":     user1Id.String(),
		"user2_id":     user2Id.String(),
		"completed_at": completedAt,
		"entity_type":  "trade_agreement",
		"entity_id":    agreementId.String(),
	})
}

// PublishSwapCoinsRewarded emits SWAPCOINS_REWARDED per bonus actually paid
func (p *NatsPublisher) PublishSwapCoinsRewarded(ctx context.Context, chatRoomId, userId uuid.UUID, amount int64, reason string, balance int64) {
	p.emit(ctx, TypeSwapCoinsRewarded, map[string]interface{}{
		"chat_room_id":      chatRoomId.String(),
		"user_id":           userId.String(),
		"amount":            amount,
		"reason":            reason,
		"swap_coin_balance": balance,
		"entity_type":       "user",
		"entity_id":         userId.String(),
	})
}

func (p *NatsPublisher) PublishChatRoomDeleted(ctx context.Context, chatRoomId, user1Id, user2Id uuid.UUID, reason string) {
	p.emit(ctx, TypeChatRoomDeleted, map[string]interface{}{
		"chat_room_id": chatRoomId.String(),
		"user1_id":     user1Id.String(),
		"user2_id":     user2Id.String(),
		"reason":       reason,
		"entity_type":  "chat_room",
		"entity_id":    chatRoomId.String(),
	})
}
