package service

import (
	"context"
	"encoding/json"

	"swappay-be/internal/dto"
	"swappay-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IPublisherService interface {
	RoomBroadcaster
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
	logger    logger.ILogger
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel, logger logger.ILogger) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
		logger:    logger,
	}
}

// Publish puts the room event on the in-process bus. Errors are logged and dropped.
func (p *publisherService) Publish(ctx context.Context, channel, event string, payload map[string]interface{}) {
	data, err := json.Marshal(dto.RoomEventMessage{
		Channel: channel,
		Event:   event,
		Payload: payload,
	})
	if err != nil {
		p.logger.Error("PUBLISHER", "Failed to marshal room event", map[string]interface{}{
			"channel": channel,
			"event":   event,
			"error":   err.Error(),
		})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)

	if err := p.pubSub.Publish(p.topicName, msg); err != nil {
		p.logger.Warn("PUBLISHER", "Failed to publish room event", map[string]interface{}{
			"channel": channel,
			"event":   event,
			"error":   err.Error(),
		})
	}
}
