package dto

import "github.com/google/uuid"

const (
	SocketActionJoinRoom    = "join_room"
	SocketActionLeaveRoom   = "leave_room"
	SocketActionSendMessage = "send_message"
)

// SocketInbound is a client frame on /ws/chat.
type SocketInbound struct {
	Action     string    `json:"action"`
	ChatRoomId uuid.UUID `json:"chat_room_id"`
	Kind       string    `json:"kind,omitempty"`
	Content    string    `json:"content,omitempty"`
	MediaURL   *string   `json:"media_url,omitempty"`
}

// SocketOutbound is a server frame.
type SocketOutbound struct {
	Event   string      `json:"event"`
	Channel string      `json:"channel,omitempty"`
	Data    interface{} `json:"data"`
}
