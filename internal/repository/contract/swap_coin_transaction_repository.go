package contract

import (
	"context"

	"swappay-be/internal/entity"
	"swappay-be/internal/repository/specification"
)

type SwapCoinTransactionRepository interface {
	Create(ctx context.Context, tx *entity.SwapCoinTransaction) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SwapCoinTransaction, error)
}
