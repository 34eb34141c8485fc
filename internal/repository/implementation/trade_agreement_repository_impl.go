package implementation

import (
	"context"
	"errors"

	"swappay-be/internal/entity"
	"swappay-be/internal/mapper"
	"swappay-be/internal/model"
	"swappay-be/internal/repository/contract"
	"swappay-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TradeAgreementRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TradeMapper
}

func NewTradeAgreementRepository(db *gorm.DB) contract.TradeAgreementRepository {
	return &TradeAgreementRepositoryImpl{
		db:     db,
		mapper: mapper.NewTradeMapper(),
	}
}

func (r *TradeAgreementRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *TradeAgreementRepositoryImpl) Create(ctx context.Context, agreement *entity.TradeAgreement) error {
	if agreement.Id == uuid.Nil {
		agreement.Id = uuid.New()
	}
	m := r.mapper.ToModel(agreement)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*agreement = *r.mapper.ToEntity(m)
	return nil
}

func (r *TradeAgreementRepositoryImpl) Update(ctx context.Context, agreement *entity.TradeAgreement) error {
	m := r.mapper.ToModel(agreement)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*agreement = *r.mapper.ToEntity(m)
	return nil
}

func (r *TradeAgreementRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.TradeAgreement, error) {
	var m model.TradeAgreement
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *TradeAgreementRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TradeAgreement, error) {
	var models []*model.TradeAgreement
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *TradeAgreementRepositoryImpl) DeleteByChatRoomId(ctx context.Context, chatRoomId uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("chat_room_id = ?", chatRoomId).Delete(&model.TradeAgreement{})
	return res.RowsAffected, res.Error
}
