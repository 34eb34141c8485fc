package service

import "context"

// Room events pushed to chat_{roomId} channels.
const (
	EventTradeStatusUpdated = "tradeStatusUpdated"
	EventTradeCompleted     = "tradeCompleted"
	EventTranscriptUpdated  = "transcriptUpdated"
	EventRoomDeleted        = "roomDeleted"
	EventNewMessage         = "newMessage"
)

// RoomBroadcaster pushes a room event to whoever listens on the channel.
// Fire-and-forget: no delivery guarantee, no listener is not an error.
type RoomBroadcaster interface {
	Publish(ctx context.Context, channel, event string, payload map[string]interface{})
}

// RoomDeliverer is the local fan-out target of the room event bus (the websocket hub).
type RoomDeliverer interface {
	PublishToRoom(channel, event string, payload map[string]interface{})
}
