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
	"swappay-be/internal/repository/specification"
	"swappay-be/internal/repository/unitofwork"
	"swappay-be/internal/tracer"
	mpEvents "swappay-be/pkg/marketplace/events"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type ITradeAgreementService interface {
	ToggleAcceptance(ctx context.Context, roomId, userId uuid.UUID) (*dto.ToggleAcceptanceResponse, error)
	AppendTranscriptEntries(ctx context.Context, roomId uuid.UUID, entries []string) (*dto.AppendTranscriptResponse, error)
	GetStatus(ctx context.Context, roomId uuid.UUID) (*dto.TradeStatusResponse, error)
	// Reset is the administrative override. It may move a completed agreement
	// back to pending; it is never reached through ToggleAcceptance.
	Reset(ctx context.Context, roomId uuid.UUID) (*dto.TradeStatusResponse, error)
	Delete(ctx context.Context, roomId uuid.UUID) error
	ListAll(ctx context.Context) ([]*dto.TradeStatusResponse, error)
}

type tradeAgreementService struct {
	uowFactory  unitofwork.RepositoryFactory
	ledger      ILedgerService
	locks       *keymutex.KeyMutex
	broadcaster RoomBroadcaster
	events      mpEvents.Publisher
	metrics     *metrics.Metrics
	logger      logger.ILogger
	now         func() time.Time
}

func NewTradeAgreementService(
	uowFactory unitofwork.RepositoryFactory,
	ledger ILedgerService,
	locks *keymutex.KeyMutex,
	broadcaster RoomBroadcaster,
	events mpEvents.Publisher,
	metrics *metrics.Metrics,
	logger logger.ILogger,
) ITradeAgreementService {
	return &tradeAgreementService{
		uowFactory:  uowFactory,
		ledger:      ledger,
		locks:       locks,
		broadcaster: broadcaster,
		events:      events,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// completion is what the completion check did inside the transaction; it is
// announced only after commit.
type completion struct {
	completedAt time.Time
	grants      []entity.RewardGrant
	rewardErr   error
}

func toStatus(room *entity.ChatRoom, a *entity.TradeAgreement) dto.TradeStatusResponse {
	res := dto.TradeStatusResponse{
		ChatRoomId: room.Id,
		User1Id:    room.User1Id,
		User2Id:    room.User2Id,
	}
	if a == nil {
		res.State = string(entity.TradeStatePending)
		res.Transcript = []string{entity.DefaultTranscriptEntry}
		return res
	}

	id := a.Id
	res.Exists = true
	res.AgreementId = &id
	res.User1Accepted = a.User1Accepted
	res.User2Accepted = a.User2Accepted
	res.State = string(a.State)
	res.Transcript = a.Transcript
	res.CompletedAt = a.CompletedAt
	res.RewardGranted = a.RewardGrantedAt != nil
	return res
}

// toggleMessage describes the outcome of a toggle for the acting user.
func toggleMessage(a *entity.TradeAgreement, slot int) string {
	if a.User1Accepted && a.User2Accepted {
		return "Trade in progress! Both users have accepted."
	}
	accepted := a.User1Accepted
	other := 2
	if slot == 2 {
		accepted = a.User2Accepted
		other = 1
	}
	if accepted {
		return fmt.Sprintf("User %d has accepted. Waiting for User %d to confirm.", slot, other)
	}
	return fmt.Sprintf("User %d has withdrawn their acceptance.", slot)
}

// lockRoom serialises every mutation of one room: in-process first, then the
// room and agreement rows inside a transaction. Always call in this order.
func (s *tradeAgreementService) lockRoom(ctx context.Context, roomId uuid.UUID) (func(), unitofwork.UnitOfWork, *entity.ChatRoom, *entity.TradeAgreement, error) {
	unlock := s.locks.Lock(roomId.String())

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		unlock()
		return nil, nil, nil, nil, err
	}
	release := func() {
		_ = uow.Rollback()
		unlock()
	}

	room, err := uow.ChatRoomRepository().FindOne(ctx, specification.ByID{ID: roomId}, specification.ForUpdate{})
	if err != nil {
		release()
		return nil, nil, nil, nil, err
	}
	if room == nil {
		release()
		return nil, nil, nil, nil, apperror.NotFound("chat room not found")
	}

	agreement, err := uow.TradeAgreementRepository().FindOne(ctx,
		specification.ByChatRoomID{ChatRoomID: roomId},
		specification.ForUpdate{},
	)
	if err != nil {
		release()
		return nil, nil, nil, nil, err
	}

	return release, uow, room, agreement, nil
}

func (s *tradeAgreementService) ToggleAcceptance(ctx context.Context, roomId, userId uuid.UUID) (*dto.ToggleAcceptanceResponse, error) {
	ctx, span := tracer.Start(ctx, "trade.ToggleAcceptance")
	defer span.End()
	span.SetAttributes(attribute.String("chat_room_id", roomId.String()))

	release, uow, room, agreement, err := s.lockRoom(ctx, roomId)
	if err != nil {
		return nil, err
	}
	defer release()

	slot := room.Slot(userId)
	if slot == 0 {
		return nil, apperror.Forbidden("you are not a participant of this chat room")
	}

	if agreement == nil {
		agreement = entity.NewTradeAgreement(room.Id)
		if err := uow.TradeAgreementRepository().Create(ctx, agreement); err != nil {
			return nil, err
		}
	}

	previous := agreement.State
	agreement.Toggle(slot, s.now())

	if err := uow.TradeAgreementRepository().Update(ctx, agreement); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.recordTransition(previous, agreement.State)

	res := &dto.ToggleAcceptanceResponse{
		TradeStatusResponse: toStatus(room, agreement),
		ActingUserId:        userId,
		Message:             toggleMessage(agreement, slot),
	}

	s.broadcaster.Publish(ctx, room.Channel(), EventTradeStatusUpdated, map[string]interface{}{
		"chat_room_id":   room.Id.String(),
		"user1_id":       room.User1Id.String(),
		"user2_id":       room.User2Id.String(),
		"acting_user_id": userId.String(),
		"user1_accepted": agreement.User1Accepted,
		"user2_accepted": agreement.User2Accepted,
		"state":          string(agreement.State),
		"completed_at":   agreement.CompletedAt,
		"message":        res.Message,
	})

	return res, nil
}

func (s *tradeAgreementService) AppendTranscriptEntries(ctx context.Context, roomId uuid.UUID, entries []string) (*dto.AppendTranscriptResponse, error) {
	ctx, span := tracer.Start(ctx, "trade.AppendTranscriptEntries")
	defer span.End()
	span.SetAttributes(attribute.String("chat_room_id", roomId.String()), attribute.Int("entries", len(entries)))

	if entries == nil {
		return nil, apperror.ValidationFailed("entries must be a list of strings")
	}
	for _, e := range entries {
		if strings.TrimSpace(e) == "" {
			return nil, apperror.ValidationFailed("transcript entries must not be blank")
		}
	}

	release, uow, room, agreement, err := s.lockRoom(ctx, roomId)
	if err != nil {
		return nil, err
	}
	defer release()

	if agreement == nil {
		agreement = entity.NewTradeAgreement(room.Id)
		if err := uow.TradeAgreementRepository().Create(ctx, agreement); err != nil {
			return nil, err
		}
	}

	added := agreement.AppendEntries(entries)

	done, err := s.completeIfReady(ctx, uow, room, agreement)
	if err != nil {
		return nil, err
	}
	if added > 0 && done == nil {
		if err := uow.TradeAgreementRepository().Update(ctx, agreement); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if added > 0 {
		s.broadcaster.Publish(ctx, room.Channel(), EventTranscriptUpdated, map[string]interface{}{
			"chat_room_id": room.Id.String(),
			"transcript":   agreement.Transcript,
			"state":        string(agreement.State),
		})
	}
	s.announceCompletion(ctx, room, agreement, done)

	res := &dto.AppendTranscriptResponse{
		TradeStatusResponse: toStatus(room, agreement),
		Added:               added,
	}
	if done != nil && done.rewardErr != nil {
		res.RewardWarning = done.rewardErr.Error()
	}
	return res, nil
}

func (s *tradeAgreementService) GetStatus(ctx context.Context, roomId uuid.UUID) (*dto.TradeStatusResponse, error) {
	ctx, span := tracer.Start(ctx, "trade.GetStatus")
	defer span.End()

	uow := s.uowFactory.NewUnitOfWork(ctx)

	room, err := uow.ChatRoomRepository().FindOne(ctx, specification.ByID{ID: roomId})
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, apperror.NotFound("chat room not found")
	}

	agreement, err := uow.TradeAgreementRepository().FindOne(ctx, specification.ByChatRoomID{ChatRoomID: roomId})
	if err != nil {
		return nil, err
	}
	if agreement == nil || !agreement.ReadyToComplete() {
		res := toStatus(room, agreement)
		return &res, nil
	}

	// Looks completable: re-check under the room lock so only one poller completes it.
	release, lockedUow, lockedRoom, lockedAgreement, err := s.lockRoom(ctx, roomId)
	if err != nil {
		return nil, err
	}
	defer release()

	if lockedAgreement == nil {
		res := toStatus(lockedRoom, nil)
		return &res, nil
	}

	done, err := s.completeIfReady(ctx, lockedUow, lockedRoom, lockedAgreement)
	if err != nil {
		return nil, err
	}
	if err := lockedUow.Commit(); err != nil {
		return nil, err
	}
	s.announceCompletion(ctx, lockedRoom, lockedAgreement, done)

	res := toStatus(lockedRoom, lockedAgreement)
	if done != nil && done.rewardErr != nil {
		res.RewardWarning = done.rewardErr.Error()
	}
	return &res, nil
}

// completeIfReady is the completion check. It fires only out of in_progress, so
// with the room lock held it runs at most once per agreement. A failed reward
// grant is rolled back on its own savepoint and never undoes the completion.
func (s *tradeAgreementService) completeIfReady(ctx context.Context, uow unitofwork.UnitOfWork, room *entity.ChatRoom, agreement *entity.TradeAgreement) (*completion, error) {
	if !agreement.ReadyToComplete() {
		return nil, nil
	}

	now := s.now()
	agreement.Complete(now)
	done := &completion{completedAt: now}

	if agreement.RewardGrantedAt == nil {
		grants, err := s.ledger.GrantWithin(ctx, uow, room.Id, room.User1Id, room.User2Id)
		if err != nil {
			done.rewardErr = err
			s.logger.Error("TRADE", "Trade completed but reward grant failed", map[string]interface{}{
				"chat_room_id": room.Id.String(),
				"error":        err.Error(),
			})
		} else {
			granted := now
			agreement.RewardGrantedAt = &granted
			done.grants = grants
		}
	} else {
		s.logger.Warn("TRADE", "Trade re-completed after reset; reward already granted", map[string]interface{}{
			"chat_room_id": room.Id.String(),
		})
	}

	if err := uow.TradeAgreementRepository().Update(ctx, agreement); err != nil {
		return nil, err
	}
	return done, nil
}

func (s *tradeAgreementService) announceCompletion(ctx context.Context, room *entity.ChatRoom, agreement *entity.TradeAgreement, done *completion) {
	if done == nil {
		return
	}

	s.recordTransition(entity.TradeStateInProgress, entity.TradeStateCompleted)

	rewards := make([]map[string]interface{}, 0, len(done.grants))
	for _, g := range done.grants {
		rewards = append(rewards, map[string]interface{}{
			"user_id":               g.UserId.String(),
			"completed_trade_count": g.CompletedTradeCount,
			"bonus":                 g.Bonus,
			"swap_coin_balance":     g.SwapCoinBalance,
		})
	}

	s.broadcaster.Publish(ctx, room.Channel(), EventTradeCompleted, map[string]interface{}{
		"chat_room_id":   room.Id.String(),
		"user1_id":       room.User1Id.String(),
		"user2_id":       room.User2Id.String(),
		"state":          string(agreement.State),
		"completed_at":   done.completedAt,
		"reward_granted": done.rewardErr == nil && len(done.grants) > 0,
		"rewards":        rewards,
	})

	s.events.PublishTradeCompleted(ctx, room.Id, agreement.Id, room.User1Id, room.User2Id, done.completedAt)
	for _, g := range done.grants {
		if g.Bonus > 0 {
			s.events.PublishSwapCoinsRewarded(ctx, room.Id, g.UserId, g.Bonus, string(g.Reason), g.SwapCoinBalance)
		}
	}

	s.logger.Info("TRADE", "Trade completed", map[string]interface{}{
		"chat_room_id": room.Id.String(),
		"agreement_id": agreement.Id.String(),
	})
}

func (s *tradeAgreementService) recordTransition(from, to entity.TradeState) {
	if from == to || s.metrics == nil {
		return
	}
	s.metrics.TradeTransitions.WithLabelValues(string(to)).Inc()
}

func (s *tradeAgreementService) Reset(ctx context.Context, roomId uuid.UUID) (*dto.TradeStatusResponse, error) {
	ctx, span := tracer.Start(ctx, "trade.Reset")
	defer span.End()

	release, uow, room, agreement, err := s.lockRoom(ctx, roomId)
	if err != nil {
		return nil, err
	}
	defer release()

	if agreement == nil {
		return nil, apperror.NotFound("trade agreement not found")
	}

	previous := agreement.State
	agreement.Reset()

	if err := uow.TradeAgreementRepository().Update(ctx, agreement); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.recordTransition(previous, agreement.State)
	s.logger.Warn("TRADE", "Trade agreement reset", map[string]interface{}{
		"chat_room_id":   room.Id.String(),
		"previous_state": string(previous),
	})

	s.broadcaster.Publish(ctx, room.Channel(), EventTradeStatusUpdated, map[string]interface{}{
		"chat_room_id":   room.Id.String(),
		"user1_id":       room.User1Id.String(),
		"user2_id":       room.User2Id.String(),
		"user1_accepted": false,
		"user2_accepted": false,
		"state":          string(agreement.State),
		"completed_at":   nil,
		"message":        "Trade agreement has been reset.",
	})

	res := toStatus(room, agreement)
	return &res, nil
}

// Delete removes only the agreement row.
func (s *tradeAgreementService) Delete(ctx context.Context, roomId uuid.UUID) error {
	unlock := s.locks.Lock(roomId.String())
	defer unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	deleted, err := uow.TradeAgreementRepository().DeleteByChatRoomId(ctx, roomId)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return apperror.NotFound("trade agreement not found")
	}

	s.logger.Info("TRADE", "Trade agreement deleted", map[string]interface{}{"chat_room_id": roomId.String()})
	return nil
}

func (s *tradeAgreementService) ListAll(ctx context.Context) ([]*dto.TradeStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	agreements, err := uow.TradeAgreementRepository().FindAll(ctx, specification.OrderBy{Field: "created_at", Desc: true})
	if err != nil {
		return nil, err
	}
	if len(agreements) == 0 {
		return []*dto.TradeStatusResponse{}, nil
	}

	roomIds := make([]uuid.UUID, 0, len(agreements))
	for _, a := range agreements {
		roomIds = append(roomIds, a.ChatRoomId)
	}
	rooms, err := uow.ChatRoomRepository().FindAll(ctx, specification.ByIDs{IDs: roomIds})
	if err != nil {
		return nil, err
	}
	byId := make(map[uuid.UUID]*entity.ChatRoom, len(rooms))
	for _, r := range rooms {
		byId[r.Id] = r
	}

	result := make([]*dto.TradeStatusResponse, 0, len(agreements))
	for _, a := range agreements {
		room, ok := byId[a.ChatRoomId]
		if !ok {
			room = &entity.ChatRoom{Id: a.ChatRoomId}
		}
		res := toStatus(room, a)
		result = append(result, &res)
	}
	return result, nil
}
