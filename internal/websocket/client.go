package websocket

import (
	"context"
	"encoding/json"
	"time"

	"swappay-be/internal/dto"
	"swappay-be/internal/entity"
	"swappay-be/internal/pkg/apperror"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendBufferSize = 256
)

// Outbound events that only the socket layer emits.
const (
	EventJoined = "joined"
	EventLeft   = "left"
	EventError  = "error"
)

// RoomGateway is what a socket needs from the chat room registry.
type RoomGateway interface {
	IsParticipant(ctx context.Context, roomId, userId uuid.UUID) (bool, error)
	SendMessage(ctx context.Context, senderId, roomId uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	Conn *websocket.Conn

	UserID uuid.UUID

	Gateway RoomGateway

	// Buffered channel of outbound messages. Never closed.
	Send chan []byte

	// Closed by the hub once the client is unregistered.
	done chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, gateway RoomGateway) *Client {
	return &Client{
		Hub:     hub,
		Conn:    conn,
		UserID:  userID,
		Gateway: gateway,
		Send:    make(chan []byte, sendBufferSize),
		done:    make(chan struct{}),
	}
}

func (c *Client) reply(event, channel string, data interface{}) {
	raw, err := json.Marshal(dto.SocketOutbound{Event: event, Channel: channel, Data: data})
	if err != nil {
		return
	}
	select {
	case <-c.done:
	case c.Send <- raw:
	default:
	}
}

func (c *Client) replyError(channel string, err error) {
	c.reply(EventError, channel, map[string]interface{}{
		"kind":    string(apperror.KindOf(err)),
		"message": err.Error(),
	})
}

// handle applies one inbound frame.
func (c *Client) handle(ctx context.Context, raw []byte) {
	var in dto.SocketInbound
	if err := json.Unmarshal(raw, &in); err != nil {
		c.replyError("", apperror.ValidationFailed("malformed frame"))
		return
	}
	if in.ChatRoomId == uuid.Nil {
		c.replyError("", apperror.ValidationFailed("chat_room_id is required"))
		return
	}
	channel := entity.RoomChannel(in.ChatRoomId)

	switch in.Action {
	case dto.SocketActionJoinRoom:
		ok, err := c.Gateway.IsParticipant(ctx, in.ChatRoomId, c.UserID)
		if err != nil {
			c.replyError(channel, err)
			return
		}
		if !ok {
			c.replyError(channel, apperror.Forbidden("you are not a participant of this chat room"))
			return
		}
		c.Hub.Join(channel, c)
		c.reply(EventJoined, channel, map[string]interface{}{"chat_room_id": in.ChatRoomId})

	case dto.SocketActionLeaveRoom:
		c.Hub.Leave(channel, c)
		c.reply(EventLeft, channel, map[string]interface{}{"chat_room_id": in.ChatRoomId})

	case dto.SocketActionSendMessage:
		// The registry broadcasts newMessage to the room, sender included.
		_, err := c.Gateway.SendMessage(ctx, c.UserID, in.ChatRoomId, &dto.SendMessageRequest{
			Kind:     in.Kind,
			Content:  in.Content,
			MediaURL: in.MediaURL,
		})
		if err != nil {
			c.replyError(channel, err)
		}

	default:
		c.replyError(channel, apperror.ValidationFailed("unknown action"))
	}
}

// readPump pumps frames from the websocket connection into handle.
func (c *Client) readPump() {
	defer func() {
		c.Hub.drop(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("Client", "Unexpected close", map[string]interface{}{"user_id": c.UserID, "error": err.Error()})
			}
			break
		}
		c.handle(context.Background(), raw)
	}
}

func (c *Client) writeClose() {
	c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.writeClose()
			return
		case <-c.Hub.done:
			c.writeClose()
			return
		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			// One frame per event; clients parse each frame as a single JSON object.
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
