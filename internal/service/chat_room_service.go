package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"swappay-be/internal/dto"
	"swappay-be/internal/entity"
	"swappay-be/internal/pkg/apperror"
	"swappay-be/internal/pkg/keymutex"
	"swappay-be/internal/pkg/logger"
	"swappay-be/internal/pkg/metrics"
	"swappay-be/internal/repository/memory"
	"swappay-be/internal/repository/specification"
	"swappay-be/internal/repository/unitofwork"
	"swappay-be/internal/tracer"
	mpEvents "swappay-be/pkg/marketplace/events"

	"github.com/google/uuid"
)

const (
	RoomDeletedHiddenByBoth = "hidden_by_both"
	RoomDeletedExplicit     = "explicit"
	RoomDeletedRecreated    = "recreated"
)

type IChatRoomService interface {
	CreateOrReuseRoom(ctx context.Context, userA, userB, subjectId uuid.UUID) (*dto.ChatRoomResponse, error)
	GetRoom(ctx context.Context, actor entity.Actor, roomId uuid.UUID) (*dto.ChatRoomResponse, error)
	ListUserRooms(ctx context.Context, userId uuid.UUID) ([]*dto.ChatRoomResponse, error)
	SetVisibility(ctx context.Context, roomId, requesterId uuid.UUID, hidden bool) (*dto.VisibilityResponse, error)
	DeleteRoom(ctx context.Context, roomId uuid.UUID, actor entity.Actor) error
	SendMessage(ctx context.Context, senderId, roomId uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	ListMessages(ctx context.Context, actor entity.Actor, roomId uuid.UUID) ([]*dto.MessageResponse, error)
	IsParticipant(ctx context.Context, roomId, userId uuid.UUID) (bool, error)
}

type chatRoomService struct {
	uowFactory  unitofwork.RepositoryFactory
	locks       *keymutex.KeyMutex
	broadcaster RoomBroadcaster
	events      mpEvents.Publisher
	membership  *memory.RoomMembershipCache
	metrics     *metrics.Metrics
	logger      logger.ILogger
}

func NewChatRoomService(
	uowFactory unitofwork.RepositoryFactory,
	locks *keymutex.KeyMutex,
	broadcaster RoomBroadcaster,
	events mpEvents.Publisher,
	membership *memory.RoomMembershipCache,
	metrics *metrics.Metrics,
	logger logger.ILogger,
) IChatRoomService {
	return &chatRoomService{
		uowFactory:  uowFactory,
		locks:       locks,
		broadcaster: broadcaster,
		events:      events,
		membership:  membership,
		metrics:     metrics,
		logger:      logger,
	}
}

func pairKey(userA, userB, subjectId uuid.UUID) string {
	a, b := userA.String(), userB.String()
	if b < a {
		a, b = b, a
	}
	return "pair:" + a + ":" + b + ":" + subjectId.String()
}

func toRoomResponse(room *entity.ChatRoom, viewer uuid.UUID, reused bool) *dto.ChatRoomResponse {
	res := &dto.ChatRoomResponse{
		Id:        room.Id,
		Channel:   room.Channel(),
		User1Id:   room.User1Id,
		User2Id:   room.User2Id,
		SubjectId: room.SubjectId,
		Reused:    reused,
		CreatedAt: room.CreatedAt,
	}
	switch room.Slot(viewer) {
	case 1:
		res.HiddenAt = room.User1HiddenAt
	case 2:
		res.HiddenAt = room.User2HiddenAt
	}
	return res
}

func toMessageResponse(m *entity.Message) *dto.MessageResponse {
	return &dto.MessageResponse{
		Id:         m.Id,
		ChatRoomId: m.ChatRoomId,
		SenderId:   m.SenderId,
		Kind:       string(m.Kind),
		Content:    m.Content,
		MediaURL:   m.MediaURL,
		CreatedAt:  m.CreatedAt,
	}
}

func (s *chatRoomService) CreateOrReuseRoom(ctx context.Context, userA, userB, subjectId uuid.UUID) (*dto.ChatRoomResponse, error) {
	ctx, span := tracer.Start(ctx, "chatRoom.CreateOrReuseRoom")
	defer span.End()

	if userA == uuid.Nil || userB == uuid.Nil || subjectId == uuid.Nil {
		return nil, apperror.ValidationFailed("both users and the subject are required")
	}
	if userA == userB {
		return nil, apperror.ValidationFailed("cannot open a chat with yourself")
	}

	unlock := s.locks.Lock(pairKey(userA, userB, subjectId))
	defer unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	for _, id := range []uuid.UUID{userA, userB} {
		user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: id})
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, apperror.NotFound(fmt.Sprintf("user %s not found", id))
		}
	}

	existing, err := uow.ChatRoomRepository().FindOne(ctx,
		specification.ByParticipantPair{UserA: userA, UserB: userB, SubjectID: subjectId},
		specification.ForUpdate{},
	)
	if err != nil {
		return nil, err
	}

	if existing != nil && !existing.FullyHidden() {
		if err := uow.Commit(); err != nil {
			return nil, err
		}
		return toRoomResponse(existing, userA, true), nil
	}

	if existing != nil {
		if err := s.destroyRoom(ctx, uow, existing.Id); err != nil {
			return nil, err
		}
	}

	room := &entity.ChatRoom{
		Id:        uuid.New(),
		User1Id:   userA,
		User2Id:   userB,
		SubjectId: subjectId,
	}
	if err := uow.ChatRoomRepository().Create(ctx, room); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if existing != nil {
		s.afterRoomDeleted(ctx, existing, RoomDeletedRecreated)
	}
	s.membership.Remember(room.Id, userA, true)
	s.membership.Remember(room.Id, userB, true)

	return toRoomResponse(room, userA, false), nil
}

func (s *chatRoomService) GetRoom(ctx context.Context, actor entity.Actor, roomId uuid.UUID) (*dto.ChatRoomResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	room, err := uow.ChatRoomRepository().FindOne(ctx, specification.ByID{ID: roomId})
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, apperror.NotFound("chat room not found")
	}
	if !room.IsParticipant(actor.UserId) && !actor.IsAdmin() {
		return nil, apperror.Forbidden("you are not a participant of this chat room")
	}

	return toRoomResponse(room, actor.UserId, false), nil
}

func (s *chatRoomService) ListUserRooms(ctx context.Context, userId uuid.UUID) ([]*dto.ChatRoomResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	rooms, err := uow.ChatRoomRepository().FindAll(ctx,
		specification.ByParticipant{UserID: userId},
		specification.VisibleTo{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.ChatRoomResponse, 0, len(rooms))
	for _, room := range rooms {
		result = append(result, toRoomResponse(room, userId, false))
	}
	return result, nil
}

func (s *chatRoomService) SetVisibility(ctx context.Context, roomId, requesterId uuid.UUID, hidden bool) (*dto.VisibilityResponse, error) {
	ctx, span := tracer.Start(ctx, "chatRoom.SetVisibility")
	defer span.End()

	unlock := s.locks.Lock(roomId.String())
	defer unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	room, err := uow.ChatRoomRepository().FindOne(ctx, specification.ByID{ID: roomId}, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, apperror.NotFound("chat room not found")
	}
	if !room.IsParticipant(requesterId) {
		return nil, apperror.Forbidden("you are not a participant of this chat room")
	}

	room.SetHidden(requesterId, hidden, time.Now())

	if room.FullyHidden() {
		if err := s.destroyRoom(ctx, uow, room.Id); err != nil {
			return nil, err
		}
		if err := uow.Commit(); err != nil {
			return nil, err
		}
		s.afterRoomDeleted(ctx, room, RoomDeletedHiddenByBoth)
		return &dto.VisibilityResponse{ChatRoomId: room.Id, Hidden: true, Deleted: true}, nil
	}

	if err := uow.ChatRoomRepository().Update(ctx, room); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return &dto.VisibilityResponse{ChatRoomId: room.Id, Hidden: hidden}, nil
}

// DeleteRoom is the explicit deletion path. Participants (or admins) may ask,
// but the room only goes once the trade gate is satisfied.
func (s *chatRoomService) DeleteRoom(ctx context.Context, roomId uuid.UUID, actor entity.Actor) error {
	ctx, span := tracer.Start(ctx, "chatRoom.DeleteRoom")
	defer span.End()

	unlock := s.locks.Lock(roomId.String())
	defer unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	room, err := uow.ChatRoomRepository().FindOne(ctx, specification.ByID{ID: roomId}, specification.ForUpdate{})
	if err != nil {
		return err
	}
	if room == nil {
		return apperror.NotFound("chat room not found")
	}
	if !room.IsParticipant(actor.UserId) && !actor.IsAdmin() {
		return apperror.Forbidden("you are not a participant of this chat room")
	}

	agreement, err := uow.TradeAgreementRepository().FindOne(ctx,
		specification.ByChatRoomID{ChatRoomID: roomId},
		specification.ForUpdate{},
	)
	if err != nil {
		return err
	}
	if agreement == nil || !agreement.DeletionAllowed() {
		return apperror.Conflict("the trade is not finished: both users must accept or complete it before the chat can be deleted")
	}

	if err := s.destroyRoom(ctx, uow, room.Id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.afterRoomDeleted(ctx, room, RoomDeletedExplicit)
	return nil
}

// destroyRoom removes children before the room row. Missing rows are no-ops.
func (s *chatRoomService) destroyRoom(ctx context.Context, uow unitofwork.UnitOfWork, roomId uuid.UUID) error {
	if _, err := uow.MessageRepository().DeleteByChatRoomId(ctx, roomId); err != nil {
		return fmt.Errorf("failed to delete messages of room %s: %w", roomId, err)
	}
	if _, err := uow.TradeAgreementRepository().DeleteByChatRoomId(ctx, roomId); err != nil {
		return fmt.Errorf("failed to delete trade agreement of room %s: %w", roomId, err)
	}
	if err := uow.ChatRoomRepository().Delete(ctx, roomId); err != nil {
		return fmt.Errorf("failed to delete room %s: %w", roomId, err)
	}
	return nil
}

func (s *chatRoomService) afterRoomDeleted(ctx context.Context, room *entity.ChatRoom, reason string) {
	s.broadcaster.Publish(ctx, room.Channel(), EventRoomDeleted, map[string]interface{}{
		"chat_room_id": room.Id.String(),
		"reason":       reason,
	})
	s.events.PublishChatRoomDeleted(ctx, room.Id, room.User1Id, room.User2Id, reason)
	s.membership.ForgetRoom(room.Id)
	if s.metrics != nil {
		s.metrics.RoomsDeleted.WithLabelValues(reason).Inc()
	}
	s.logger.Info("CHAT_ROOM", "Chat room deleted", map[string]interface{}{
		"chat_room_id": room.Id.String(),
		"reason":       reason,
	})
}

func (s *chatRoomService) SendMessage(ctx context.Context, senderId, roomId uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	kind := entity.MessageKind(req.Kind)
	if kind == "" {
		kind = entity.MessageKindText
	}
	switch kind {
	case entity.MessageKindText:
		if strings.TrimSpace(req.Content) == "" {
			return nil, apperror.ValidationFailed("text messages need content")
		}
	case entity.MessageKindImage:
		if req.MediaURL == nil || strings.TrimSpace(*req.MediaURL) == "" {
			return nil, apperror.ValidationFailed("image messages need a media reference")
		}
	default:
		return nil, apperror.ValidationFailed("unknown message kind")
	}

	// Same lock and row lock as the destroy paths, so a message never lands in a deleted room.
	unlock := s.locks.Lock(roomId.String())
	defer unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	room, err := uow.ChatRoomRepository().FindOne(ctx, specification.ByID{ID: roomId}, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, apperror.NotFound("chat room not found")
	}
	if !room.IsParticipant(senderId) {
		return nil, apperror.Forbidden("you are not a participant of this chat room")
	}

	msg := &entity.Message{
		Id:         uuid.New(),
		ChatRoomId: roomId,
		SenderId:   senderId,
		Kind:       kind,
		Content:    req.Content,
		MediaURL:   req.MediaURL,
	}
	if err := uow.MessageRepository().Create(ctx, msg); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	res := toMessageResponse(msg)
	s.broadcaster.Publish(ctx, room.Channel(), EventNewMessage, map[string]interface{}{
		"id":           res.Id.String(),
		"chat_room_id": res.ChatRoomId.String(),
		"sender_id":    res.SenderId.String(),
		"kind":         res.Kind,
		"content":      res.Content,
		"media_url":    res.MediaURL,
		"created_at":   res.CreatedAt,
	})
	return res, nil
}

func (s *chatRoomService) ListMessages(ctx context.Context, actor entity.Actor, roomId uuid.UUID) ([]*dto.MessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	room, err := uow.ChatRoomRepository().FindOne(ctx, specification.ByID{ID: roomId})
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, apperror.NotFound("chat room not found")
	}
	if !room.IsParticipant(actor.UserId) && !actor.IsAdmin() {
		return nil, apperror.Forbidden("you are not a participant of this chat room")
	}

	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByChatRoomID{ChatRoomID: roomId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		result = append(result, toMessageResponse(m))
	}
	return result, nil
}

// IsParticipant answers socket join checks, cached per (room, user).
func (s *chatRoomService) IsParticipant(ctx context.Context, roomId, userId uuid.UUID) (bool, error) {
	if member, found := s.membership.Lookup(roomId, userId); found {
		return member, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	room, err := uow.ChatRoomRepository().FindOne(ctx, specification.ByID{ID: roomId})
	if err != nil {
		return false, err
	}
	if room == nil {
		return false, nil
	}

	member := room.IsParticipant(userId)
	s.membership.Remember(roomId, userId, member)
	return member, nil
}
