package contract

import (
	"context"

	"swappay-be/internal/entity"
	"swappay-be/internal/repository/specification"

	"github.com/google/uuid"
)

type TradeAgreementRepository interface {
	Create(ctx context.Context, agreement *entity.TradeAgreement) error
	Update(ctx context.Context, agreement *entity.TradeAgreement) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.TradeAgreement, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TradeAgreement, error)
	DeleteByChatRoomId(ctx context.Context, chatRoomId uuid.UUID) (int64, error)
}
