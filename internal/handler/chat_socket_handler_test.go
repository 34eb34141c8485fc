package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"swappay-be/internal/dto"
	"swappay-be/internal/pkg/logger"
	internalWS "swappay-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noGateway struct{}

func (noGateway) IsParticipant(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return false, nil
}

func (noGateway) SendMessage(context.Context, uuid.UUID, uuid.UUID, *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	return nil, nil
}

func TestHandshakeAuthentication(t *testing.T) {
	t.Setenv("JWT_SECRET", "socket-secret")
	log := logger.NewNopLogger()
	h := NewChatSocketHandler(internalWS.NewHub(nil, log), noGateway{}, log)

	app := fiber.New()
	h.RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ws/chat", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/ws/chat?token=garbage", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": uuid.NewString()}).
		SignedString([]byte("socket-secret"))
	require.NoError(t, err)

	// A valid token without the upgrade headers is a plain HTTP request.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/ws/chat?token="+tok, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}
