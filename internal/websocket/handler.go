package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs runs a client session on an upgraded connection until it closes.
func ServeWs(hub *Hub, gateway RoomGateway, c *websocket.Conn, userID uuid.UUID) {
	client := NewClient(hub, c, userID, gateway)
	select {
	case hub.register <- client:
	case <-hub.done:
		c.Close()
		return
	}

	go client.writePump()
	client.readPump()
}
