package service

import (
	"context"
	"encoding/json"

	"swappay-be/internal/dto"
	"swappay-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	deliverer RoomDeliverer
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	deliverer RoomDeliverer,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		deliverer: deliverer,
		logger:    logger,
	}
}

// Consume subscribes to the room event topic and hands every event to the deliverer
// until ctx is cancelled.
func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	// Delivery is best effort, so every message is acked, even malformed ones.
	defer msg.Ack()

	var evt dto.RoomEventMessage
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal room event", map[string]interface{}{"error": err.Error()})
		return
	}

	cs.deliverer.PublishToRoom(evt.Channel, evt.Event, evt.Payload)
}
