package mapper

import (
	"swappay-be/internal/entity"
	"swappay-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:                  u.Id,
		Username:            u.Username,
		Email:               u.Email,
		Role:                entity.UserRole(u.Role),
		SwapCoinBalance:     u.SwapCoinBalance,
		CompletedTradeCount: u.CompletedTradeCount,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	return &model.User{
		Id:                  u.Id,
		Username:            u.Username,
		Email:               u.Email,
		Role:                string(u.Role),
		SwapCoinBalance:     u.SwapCoinBalance,
		CompletedTradeCount: u.CompletedTradeCount,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}

func (m *UserMapper) ToEntities(users []*model.User) []*entity.User {
	result := make([]*entity.User, 0, len(users))
	for _, u := range users {
		result = append(result, m.ToEntity(u))
	}
	return result
}

func (m *UserMapper) SwapCoinTransactionToEntity(t *model.SwapCoinTransaction) *entity.SwapCoinTransaction {
	if t == nil {
		return nil
	}
	return &entity.SwapCoinTransaction{
		Id:         t.Id,
		UserId:     t.UserId,
		ChatRoomId: t.ChatRoomId,
		Amount:     t.Amount,
		Reason:     entity.SwapCoinReason(t.Reason),
		CreatedAt:  t.CreatedAt,
	}
}

func (m *UserMapper) SwapCoinTransactionToModel(t *entity.SwapCoinTransaction) *model.SwapCoinTransaction {
	if t == nil {
		return nil
	}
	return &model.SwapCoinTransaction{
		Id:         t.Id,
		UserId:     t.UserId,
		ChatRoomId: t.ChatRoomId,
		Amount:     t.Amount,
		Reason:     string(t.Reason),
		CreatedAt:  t.CreatedAt,
	}
}
