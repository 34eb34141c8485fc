package mapper

import (
	"swappay-be/internal/entity"
	"swappay-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) RoomToEntity(r *model.ChatRoom) *entity.ChatRoom {
	if r == nil {
		return nil
	}
	return &entity.ChatRoom{
		Id:            r.Id,
		User1Id:       r.User1Id,
		User2Id:       r.User2Id,
		SubjectId:     r.SubjectId,
		User1HiddenAt: r.User1HiddenAt,
		User2HiddenAt: r.User2HiddenAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func (m *ChatMapper) RoomToModel(r *entity.ChatRoom) *model.ChatRoom {
	if r == nil {
		return nil
	}
	return &model.ChatRoom{
		Id:            r.Id,
		User1Id:       r.User1Id,
		User2Id:       r.User2Id,
		SubjectId:     r.SubjectId,
		User1HiddenAt: r.User1HiddenAt,
		User2HiddenAt: r.User2HiddenAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func (m *ChatMapper) RoomsToEntities(rooms []*model.ChatRoom) []*entity.ChatRoom {
	result := make([]*entity.ChatRoom, 0, len(rooms))
	for _, r := range rooms {
		result = append(result, m.RoomToEntity(r))
	}
	return result
}

func (m *ChatMapper) MessageToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}
	return &entity.Message{
		Id:         msg.Id,
		ChatRoomId: msg.ChatRoomId,
		SenderId:   msg.SenderId,
		Kind:       entity.MessageKind(msg.Kind),
		Content:    msg.Content,
		MediaURL:   msg.MediaURL,
		CreatedAt:  msg.CreatedAt,
	}
}

func (m *ChatMapper) MessageToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}
	return &model.Message{
		Id:         msg.Id,
		ChatRoomId: msg.ChatRoomId,
		SenderId:   msg.SenderId,
		Kind:       string(msg.Kind),
		Content:    msg.Content,
		MediaURL:   msg.MediaURL,
		CreatedAt:  msg.CreatedAt,
	}
}

func (m *ChatMapper) MessagesToEntities(msgs []*model.Message) []*entity.Message {
	result := make([]*entity.Message, 0, len(msgs))
	for _, msg := range msgs {
		result = append(result, m.MessageToEntity(msg))
	}
	return result
}
