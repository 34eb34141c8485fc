package mapper

import (
	"swappay-be/internal/entity"
	"swappay-be/internal/model"

	"gorm.io/datatypes"
)

type TradeMapper struct{}

func NewTradeMapper() *TradeMapper {
	return &TradeMapper{}
}

func (m *TradeMapper) ToEntity(a *model.TradeAgreement) *entity.TradeAgreement {
	if a == nil {
		return nil
	}
	transcript := make([]string, len(a.Transcript))
	copy(transcript, a.Transcript)
	return &entity.TradeAgreement{
		Id:              a.Id,
		ChatRoomId:      a.ChatRoomId,
		User1Accepted:   a.User1Accepted,
		User2Accepted:   a.User2Accepted,
		State:           entity.TradeState(a.State),
		Transcript:      transcript,
		CompletedAt:     a.CompletedAt,
		RewardGrantedAt: a.RewardGrantedAt,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func (m *TradeMapper) ToModel(a *entity.TradeAgreement) *model.TradeAgreement {
	if a == nil {
		return nil
	}
	transcript := a.Transcript
	if transcript == nil {
		transcript = []string{}
	}
	return &model.TradeAgreement{
		Id:              a.Id,
		ChatRoomId:      a.ChatRoomId,
		User1Accepted:   a.User1Accepted,
		User2Accepted:   a.User2Accepted,
		State:           string(a.State),
		Transcript:      datatypes.JSONSlice[string](transcript),
		CompletedAt:     a.CompletedAt,
		RewardGrantedAt: a.RewardGrantedAt,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func (m *TradeMapper) ToEntities(agreements []*model.TradeAgreement) []*entity.TradeAgreement {
	result := make([]*entity.TradeAgreement, 0, len(agreements))
	for _, a := range agreements {
		result = append(result, m.ToEntity(a))
	}
	return result
}
