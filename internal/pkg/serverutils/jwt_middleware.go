package serverutils

import (
	"errors"
	"os"
	"strings"

	"swappay-be/internal/entity"
	"swappay-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	LocalUserId = "user_id"
	LocalRole   = "role"
)

// ParseToken validates an HS256 token signed with JWT_SECRET and returns the caller.
func ParseToken(tokenStr string) (entity.Actor, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return entity.Actor{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return entity.Actor{}, errors.New("invalid claims")
	}

	sub, _ := claims["user_id"].(string)
	userId, err := uuid.Parse(sub)
	if err != nil {
		return entity.Actor{}, errors.New("invalid user_id claim")
	}

	role, _ := claims["role"].(string)
	if role == "" {
		role = string(entity.UserRoleUser)
	}
	return entity.Actor{UserId: userId, Role: entity.UserRole(role)}, nil
}

func JwtMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Missing token"})
	}

	actor, err := ParseToken(strings.TrimSpace(authHeader[7:]))
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Invalid token"})
	}

	ctx.Locals(LocalUserId, actor.UserId.String())
	ctx.Locals(LocalRole, string(actor.Role))
	return ctx.Next()
}

// AdminOnly must run after JwtMiddleware.
func AdminOnly(ctx *fiber.Ctx) error {
	role, _ := ctx.Locals(LocalRole).(string)
	if entity.UserRole(role) != entity.UserRoleAdmin {
		return apperror.Forbidden("admin role required")
	}
	return ctx.Next()
}

// CurrentActor reads the caller stored by JwtMiddleware.
func CurrentActor(ctx *fiber.Ctx) (entity.Actor, error) {
	userIdStr, _ := ctx.Locals(LocalUserId).(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return entity.Actor{}, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	role, _ := ctx.Locals(LocalRole).(string)
	return entity.Actor{UserId: userId, Role: entity.UserRole(role)}, nil
}
