package service

import (
	"testing"

	"swappay-be/internal/entity"
	"swappay-be/internal/pkg/apperror"
	"swappay-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBonusFor(t *testing.T) {
	tests := []struct {
		count  int
		bonus  int64
		reason entity.SwapCoinReason
	}{
		{count: 1, bonus: 500, reason: entity.SwapCoinReasonFirstTrade},
		{count: 2, bonus: 0},
		{count: 3, bonus: 2000, reason: entity.SwapCoinReasonLoyalty},
		{count: 4, bonus: 0},
		{count: 10, bonus: 0},
	}
	for _, tt := range tests {
		bonus, reason := BonusFor(tt.count)
		assert.Equal(t, tt.bonus, bonus, "count %d", tt.count)
		assert.Equal(t, tt.reason, reason, "count %d", tt.count)
	}
}

func TestGrantTradeCompletionReward(t *testing.T) {
	f := newFixture(t)
	first := f.createUser(t, "first")
	loyal := f.createUser(t, "loyal")
	require.NoError(t, f.uow().UserRepository().UpdateLedger(f.ctx, loyal.Id, 700, 2))

	roomId := uuid.New()
	grants, err := f.ledger.GrantTradeCompletionReward(f.ctx, roomId, first.Id, loyal.Id)
	require.NoError(t, err)
	require.Len(t, grants, 2)

	assert.Equal(t, first.Id, grants[0].UserId)
	assert.Equal(t, int64(500), grants[0].Bonus)
	assert.Equal(t, loyal.Id, grants[1].UserId)
	assert.Equal(t, int64(2000), grants[1].Bonus)

	got := f.user(t, first.Id)
	assert.Equal(t, 1, got.CompletedTradeCount)
	assert.Equal(t, int64(500), got.SwapCoinBalance)

	got = f.user(t, loyal.Id)
	assert.Equal(t, 3, got.CompletedTradeCount)
	assert.Equal(t, int64(2700), got.SwapCoinBalance)

	journal, err := f.uow().SwapCoinTransactionRepository().FindAll(f.ctx, specification.ByUserID{UserID: loyal.Id})
	require.NoError(t, err)
	require.Len(t, journal, 1)
	assert.Equal(t, entity.SwapCoinReasonLoyalty, journal[0].Reason)
	require.NotNil(t, journal[0].ChatRoomId)
	assert.Equal(t, roomId, *journal[0].ChatRoomId)

	// Fourth trade for the loyal user: counter moves, balance does not.
	_, err = f.ledger.GrantTradeCompletionReward(f.ctx, uuid.New(), first.Id, loyal.Id)
	require.NoError(t, err)
	got = f.user(t, loyal.Id)
	assert.Equal(t, 4, got.CompletedTradeCount)
	assert.Equal(t, int64(2700), got.SwapCoinBalance)
	got = f.user(t, first.Id)
	assert.Equal(t, 2, got.CompletedTradeCount)
	assert.Equal(t, int64(500), got.SwapCoinBalance)
}

func TestGrantUserNotFoundMutatesNothing(t *testing.T) {
	f := newFixture(t)
	known := f.createUser(t, "known")

	_, err := f.ledger.GrantTradeCompletionReward(f.ctx, uuid.New(), known.Id, uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrUserNotFound)

	got := f.user(t, known.Id)
	assert.Equal(t, 0, got.CompletedTradeCount)
	assert.Equal(t, int64(0), got.SwapCoinBalance)

	journal, err := f.uow().SwapCoinTransactionRepository().FindAll(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, journal)
}

func TestGrantRejectsSameUserTwice(t *testing.T) {
	f := newFixture(t)
	u := f.createUser(t, "solo")

	_, err := f.ledger.GrantTradeCompletionReward(f.ctx, uuid.New(), u.Id, u.Id)
	assert.ErrorIs(t, err, apperror.ErrValidationFailed)
}

func TestGetBalance(t *testing.T) {
	f := newFixture(t)
	u := f.createUser(t, "wallet")
	require.NoError(t, f.uow().UserRepository().UpdateLedger(f.ctx, u.Id, 1234, 5))

	res, err := f.ledger.GetBalance(f.ctx, u.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(1234), res.SwapCoinBalance)
	assert.Equal(t, 5, res.CompletedTradeCount)

	_, err = f.ledger.GetBalance(f.ctx, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrUserNotFound)
}
