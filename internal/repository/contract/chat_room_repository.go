package contract

import (
	"context"

	"swappay-be/internal/entity"
	"swappay-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatRoomRepository interface {
	Create(ctx context.Context, room *entity.ChatRoom) error
	Update(ctx context.Context, room *entity.ChatRoom) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatRoom, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatRoom, error)
}
