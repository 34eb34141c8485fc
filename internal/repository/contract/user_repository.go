package contract

import (
	"context"

	"swappay-be/internal/entity"
	"swappay-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// UpdateLedger writes balance and completed-trade counter in one statement.
	UpdateLedger(ctx context.Context, id uuid.UUID, swapCoinBalance int64, completedTradeCount int) error
}
