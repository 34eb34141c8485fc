package service

import (
	"context"
	"fmt"

	"swappay-be/internal/dto"
	"swappay-be/internal/entity"
	"swappay-be/internal/pkg/apperror"
	"swappay-be/internal/pkg/logger"
	"swappay-be/internal/pkg/metrics"
	"swappay-be/internal/repository/specification"
	"swappay-be/internal/repository/unitofwork"
	"swappay-be/internal/tracer"

	"github.com/google/uuid"
)

const (
	FirstTradeBonus int64 = 500
	LoyaltyBonus    int64 = 2000

	firstTradeThreshold = 1
	loyaltyThreshold    = 3
)

// BonusFor returns the bonus due when a user's completed-trade count reaches count.
func BonusFor(count int) (int64, entity.SwapCoinReason) {
	switch count {
	case firstTradeThreshold:
		return FirstTradeBonus, entity.SwapCoinReasonFirstTrade
	case loyaltyThreshold:
		return LoyaltyBonus, entity.SwapCoinReasonLoyalty
	default:
		return 0, ""
	}
}

// ILedgerService owns swap-coin balances and completed-trade counters.
//
// The ledger does not deduplicate grants. Callers must invoke it at most once per
// completed trade; the trade state machine does so by granting only on the one-way
// transition into completed.
type ILedgerService interface {
	GrantTradeCompletionReward(ctx context.Context, chatRoomId, user1Id, user2Id uuid.UUID) ([]entity.RewardGrant, error)
	// GrantWithin applies the grant inside the caller's unit of work as a savepoint.
	GrantWithin(ctx context.Context, uow unitofwork.UnitOfWork, chatRoomId, user1Id, user2Id uuid.UUID) ([]entity.RewardGrant, error)
	GetBalance(ctx context.Context, userId uuid.UUID) (*dto.BalanceResponse, error)
}

type ledgerService struct {
	uowFactory unitofwork.RepositoryFactory
	metrics    *metrics.Metrics
	logger     logger.ILogger
}

func NewLedgerService(
	uowFactory unitofwork.RepositoryFactory,
	metrics *metrics.Metrics,
	logger logger.ILogger,
) ILedgerService {
	return &ledgerService{
		uowFactory: uowFactory,
		metrics:    metrics,
		logger:     logger,
	}
}

func (s *ledgerService) GrantTradeCompletionReward(ctx context.Context, chatRoomId, user1Id, user2Id uuid.UUID) ([]entity.RewardGrant, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return s.GrantWithin(ctx, uow, chatRoomId, user1Id, user2Id)
}

func (s *ledgerService) GrantWithin(ctx context.Context, uow unitofwork.UnitOfWork, chatRoomId, user1Id, user2Id uuid.UUID) ([]entity.RewardGrant, error) {
	ctx, span := tracer.Start(ctx, "ledger.GrantTradeCompletionReward")
	defer span.End()

	if user1Id == user2Id {
		return nil, apperror.ValidationFailed("a trade needs two distinct users")
	}

	var grants []entity.RewardGrant
	err := uow.Transaction(ctx, func(tx unitofwork.UnitOfWork) error {
		users, err := s.lockPair(ctx, tx, user1Id, user2Id)
		if err != nil {
			return err
		}

		grants = make([]entity.RewardGrant, 0, 2)
		for _, user := range users {
			grant, err := s.applyCompletion(ctx, tx, chatRoomId, user)
			if err != nil {
				return err
			}
			grants = append(grants, grant)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, g := range grants {
		if g.Bonus > 0 && s.metrics != nil {
			s.metrics.RewardsGranted.WithLabelValues(string(g.Reason)).Inc()
		}
	}
	s.logger.Info("LEDGER", "Trade completion reward applied", map[string]interface{}{
		"chat_room_id": chatRoomId.String(),
		"user1_id":     user1Id.String(),
		"user2_id":     user2Id.String(),
	})
	return grants, nil
}

// lockPair loads both users with row locks in id order and returns them in
// (user1, user2) order. Either missing fails the whole grant.
func (s *ledgerService) lockPair(ctx context.Context, uow unitofwork.UnitOfWork, user1Id, user2Id uuid.UUID) ([]*entity.User, error) {
	first, second := user1Id, user2Id
	if second.String() < first.String() {
		first, second = second, first
	}

	locked := make(map[uuid.UUID]*entity.User, 2)
	for _, id := range []uuid.UUID{first, second} {
		user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: id}, specification.ForUpdate{})
		if err != nil {
			return nil, fmt.Errorf("failed to load user %s: %w", id, err)
		}
		if user == nil {
			return nil, apperror.UserNotFound(fmt.Sprintf("user %s not found", id))
		}
		locked[id] = user
	}
	return []*entity.User{locked[user1Id], locked[user2Id]}, nil
}

func (s *ledgerService) applyCompletion(ctx context.Context, uow unitofwork.UnitOfWork, chatRoomId uuid.UUID, user *entity.User) (entity.RewardGrant, error) {
	count := user.CompletedTradeCount + 1
	bonus, reason := BonusFor(count)
	balance := user.SwapCoinBalance + bonus

	if err := uow.UserRepository().UpdateLedger(ctx, user.Id, balance, count); err != nil {
		return entity.RewardGrant{}, fmt.Errorf("failed to update ledger for user %s: %w", user.Id, err)
	}

	if bonus > 0 {
		roomId := chatRoomId
		journal := &entity.SwapCoinTransaction{
			UserId:     user.Id,
			ChatRoomId: &roomId,
			Amount:     bonus,
			Reason:     reason,
		}
		if err := uow.SwapCoinTransactionRepository().Create(ctx, journal); err != nil {
			return entity.RewardGrant{}, fmt.Errorf("failed to journal swap-coin grant: %w", err)
		}
	}

	return entity.RewardGrant{
		UserId:              user.Id,
		CompletedTradeCount: count,
		Bonus:               bonus,
		Reason:              reason,
		SwapCoinBalance:     balance,
	}, nil
}

func (s *ledgerService) GetBalance(ctx context.Context, userId uuid.UUID) (*dto.BalanceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.UserNotFound("user not found")
	}

	return &dto.BalanceResponse{
		UserId:              user.Id,
		SwapCoinBalance:     user.SwapCoinBalance,
		CompletedTradeCount: user.CompletedTradeCount,
	}, nil
}
