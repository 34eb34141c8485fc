package handler

import (
	"swappay-be/internal/pkg/logger"
	"swappay-be/internal/pkg/serverutils"
	internalWS "swappay-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ChatSocketHandler upgrades authenticated clients onto the room hub.
type ChatSocketHandler struct {
	hub     *internalWS.Hub
	gateway internalWS.RoomGateway
	logger  logger.ILogger
}

func NewChatSocketHandler(hub *internalWS.Hub, gateway internalWS.RoomGateway, log logger.ILogger) *ChatSocketHandler {
	return &ChatSocketHandler{
		hub:     hub,
		gateway: gateway,
		logger:  log,
	}
}

// ServeWs authenticates the handshake and runs the socket session.
func (h *ChatSocketHandler) ServeWs(c *fiber.Ctx) error {
	// Browsers cannot set headers on a websocket handshake, so the query param wins.
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (Query 'token' or Header 'Authorization')"})
	}

	actor, err := serverutils.ParseToken(tokenStr)
	if err != nil {
		h.logger.Warn("ChatSocketHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("ChatSocketHandler", "Starting WebSocket session", map[string]interface{}{"user_id": actor.UserId})
		internalWS.ServeWs(h.hub, h.gateway, conn, actor.UserId)
		h.logger.Info("ChatSocketHandler", "WebSocket session ended", map[string]interface{}{"user_id": actor.UserId})
	})(c)
}

func (h *ChatSocketHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/chat", h.ServeWs)
}
