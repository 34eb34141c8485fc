package implementation

import (
	"context"

	"swappay-be/internal/entity"
	"swappay-be/internal/mapper"
	"swappay-be/internal/model"
	"swappay-be/internal/repository/contract"
	"swappay-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SwapCoinTransactionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewSwapCoinTransactionRepository(db *gorm.DB) contract.SwapCoinTransactionRepository {
	return &SwapCoinTransactionRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

func (r *SwapCoinTransactionRepositoryImpl) Create(ctx context.Context, tx *entity.SwapCoinTransaction) error {
	if tx.Id == uuid.Nil {
		tx.Id = uuid.New()
	}
	m := r.mapper.SwapCoinTransactionToModel(tx)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*tx = *r.mapper.SwapCoinTransactionToEntity(m)
	return nil
}

func (r *SwapCoinTransactionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SwapCoinTransaction, error) {
	var models []*model.SwapCoinTransaction
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	result := make([]*entity.SwapCoinTransaction, 0, len(models))
	for _, m := range models {
		result = append(result, r.mapper.SwapCoinTransactionToEntity(m))
	}
	return result, nil
}
