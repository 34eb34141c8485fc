package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"swappay-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDeliverer struct {
	mu     sync.Mutex
	frames []broadcastCall
}

func (d *recordingDeliverer) PublishToRoom(channel, event string, payload map[string]interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frames = append(d.frames, broadcastCall{Channel: channel, Event: event, Payload: payload})
}

func (d *recordingDeliverer) snapshot() []broadcastCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]broadcastCall(nil), d.frames...)
}

func TestRoomEventsFlowThroughBus(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	deliverer := &recordingDeliverer{}
	consumer := NewConsumerService(pubSub, "room_events", deliverer, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService("room_events", pubSub, logger.NewNopLogger())
	publisher.Publish(ctx, "chat_abc", EventTradeStatusUpdated, map[string]interface{}{"state": "in_progress"})

	assert.Eventually(t, func() bool { return len(deliverer.snapshot()) == 1 }, time.Second, 10*time.Millisecond)

	got := deliverer.snapshot()[0]
	assert.Equal(t, "chat_abc", got.Channel)
	assert.Equal(t, EventTradeStatusUpdated, got.Event)
	assert.Equal(t, "in_progress", got.Payload["state"])
}

func TestPublishWithoutSubscriberIsNotAnError(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	publisher := NewPublisherService("room_events", pubSub, logger.NewNopLogger())
	assert.NotPanics(t, func() {
		publisher.Publish(context.Background(), "chat_nobody", EventRoomDeleted, nil)
	})
}
