package service

import (
	"sync"
	"testing"
	"time"

	"swappay-be/internal/entity"
	"swappay-be/internal/pkg/apperror"
	"swappay-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// acceptBoth drives a room to in_progress.
func acceptBoth(t *testing.T, f *fixture, roomId, u1, u2 uuid.UUID) {
	t.Helper()
	_, err := f.trade.ToggleAcceptance(f.ctx, roomId, u1)
	require.NoError(t, err)
	res, err := f.trade.ToggleAcceptance(f.ctx, roomId, u2)
	require.NoError(t, err)
	require.Equal(t, string(entity.TradeStateInProgress), res.State)
}

func TestStatusWithoutAgreement(t *testing.T) {
	f := newFixture(t)
	u1, u2, roomId := f.createRoom(t)

	status, err := f.trade.GetStatus(f.ctx, roomId)
	require.NoError(t, err)

	assert.False(t, status.Exists)
	assert.Equal(t, string(entity.TradeStatePending), status.State)
	assert.Equal(t, []string{entity.DefaultTranscriptEntry}, status.Transcript)
	assert.Nil(t, status.CompletedAt)
	assert.Equal(t, u1.Id, status.User1Id)
	assert.Equal(t, u2.Id, status.User2Id)
	assert.Nil(t, f.agreement(t, roomId), "status must not create the agreement")

	_, err = f.trade.GetStatus(f.ctx, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestTradeLifecycleToCompletion(t *testing.T) {
	f := newFixture(t)
	u1, u2, roomId := f.createRoom(t)

	first, err := f.trade.ToggleAcceptance(f.ctx, roomId, u1.Id)
	require.NoError(t, err)
	assert.True(t, first.User1Accepted)
	assert.Equal(t, string(entity.TradeStatePending), first.State)
	assert.Equal(t, "User 1 has accepted. Waiting for User 2 to confirm.", first.Message)

	second, err := f.trade.ToggleAcceptance(f.ctx, roomId, u2.Id)
	require.NoError(t, err)
	assert.Equal(t, string(entity.TradeStateInProgress), second.State)
	assert.NotNil(t, second.CompletedAt)
	assert.Equal(t, "Trade in progress! Both users have accepted.", second.Message)
	assert.Equal(t, u2.Id, second.ActingUserId)

	updates := f.broadcaster.events(EventTradeStatusUpdated)
	require.Len(t, updates, 2)
	assert.Equal(t, entity.RoomChannel(roomId), updates[1].Channel)
	assert.Equal(t, u2.Id.String(), updates[1].Payload["acting_user_id"])
	assert.Equal(t, u1.Id.String(), updates[1].Payload["user1_id"])

	res, err := f.trade.AppendTranscriptEntries(f.ctx, roomId, []string{"negotiating", "trade successful"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.TradeStateCompleted), res.State)
	assert.Equal(t, 1, res.Added, "the placeholder entry is already present")
	assert.True(t, res.RewardGranted)
	assert.Empty(t, res.RewardWarning)
	assert.Equal(t, []string{"negotiating", "trade successful"}, res.Transcript)

	for _, id := range []uuid.UUID{u1.Id, u2.Id} {
		u := f.user(t, id)
		assert.Equal(t, 1, u.CompletedTradeCount)
		assert.Equal(t, int64(500), u.SwapCoinBalance)
	}

	assert.Len(t, f.broadcaster.events(EventTradeCompleted), 1)
	assert.Len(t, f.broadcaster.events(EventTranscriptUpdated), 1)
	assert.Equal(t, 1, f.events.count("TRADE_COMPLETED"))
	assert.Equal(t, 2, f.events.count("SWAPCOINS_REWARDED"))

	stored := f.agreement(t, roomId)
	require.NotNil(t, stored)
	assert.Equal(t, entity.TradeStateCompleted, stored.State)
	assert.NotNil(t, stored.CompletedAt)
	assert.NotNil(t, stored.RewardGrantedAt)
}

func TestCompletedIsMonotonic(t *testing.T) {
	f := newFixture(t)
	u1, u2, roomId := f.createRoom(t)
	acceptBoth(t, f, roomId, u1.Id, u2.Id)

	_, err := f.trade.AppendTranscriptEntries(f.ctx, roomId, []string{"Trade Successful "})
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		actor := u1.Id
		if i%2 == 1 {
			actor = u2.Id
		}
		res, err := f.trade.ToggleAcceptance(f.ctx, roomId, actor)
		require.NoError(t, err)
		assert.Equal(t, string(entity.TradeStateCompleted), res.State)
		assert.NotNil(t, res.CompletedAt)
	}

	res, err := f.trade.AppendTranscriptEntries(f.ctx, roomId, []string{"back to haggling"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.TradeStateCompleted), res.State)

	status, err := f.trade.GetStatus(f.ctx, roomId)
	require.NoError(t, err)
	assert.Equal(t, string(entity.TradeStateCompleted), status.State)
	assert.Equal(t, 1, f.user(t, u1.Id).CompletedTradeCount)
}

func TestConcurrentCompletionGrantsOnce(t *testing.T) {
	f := newFixture(t)
	u1, u2, roomId := f.createRoom(t)
	acceptBoth(t, f, roomId, u1.Id, u2.Id)

	const callers = 4
	var wg sync.WaitGroup
	errs := make(chan error, callers*2)
	for i := 0; i < callers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := f.trade.AppendTranscriptEntries(f.ctx, roomId, []string{"trade successful"})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := f.trade.GetStatus(f.ctx, roomId)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	for _, id := range []uuid.UUID{u1.Id, u2.Id} {
		u := f.user(t, id)
		assert.Equal(t, 1, u.CompletedTradeCount)
		assert.Equal(t, int64(500), u.SwapCoinBalance)
	}
	journal, err := f.uow().SwapCoinTransactionRepository().FindAll(f.ctx)
	require.NoError(t, err)
	assert.Len(t, journal, 2)
	assert.Len(t, f.broadcaster.events(EventTradeCompleted), 1)
}

func TestStatusPollingCompletes(t *testing.T) {
	f := newFixture(t)
	u1, u2, roomId := f.createRoom(t)

	// The success marker arrives before both sides accept.
	_, err := f.trade.AppendTranscriptEntries(f.ctx, roomId, []string{"trade successful"})
	require.NoError(t, err)
	acceptBoth(t, f, roomId, u1.Id, u2.Id)

	status, err := f.trade.GetStatus(f.ctx, roomId)
	require.NoError(t, err)
	assert.Equal(t, string(entity.TradeStateCompleted), status.State)
	assert.Equal(t, 1, f.user(t, u2.Id).CompletedTradeCount)
}

func TestResetThenStatus(t *testing.T) {
	f := newFixture(t)
	u1, u2, roomId := f.createRoom(t)
	acceptBoth(t, f, roomId, u1.Id, u2.Id)
	_, err := f.trade.AppendTranscriptEntries(f.ctx, roomId, []string{"trade successful"})
	require.NoError(t, err)

	_, err = f.trade.Reset(f.ctx, roomId)
	require.NoError(t, err)

	status, err := f.trade.GetStatus(f.ctx, roomId)
	require.NoError(t, err)
	assert.Equal(t, string(entity.TradeStatePending), status.State)
	assert.False(t, status.User1Accepted)
	assert.False(t, status.User2Accepted)
	assert.Nil(t, status.CompletedAt)

	// Re-completing after a reset does not pay out again.
	acceptBoth(t, f, roomId, u1.Id, u2.Id)
	status, err = f.trade.GetStatus(f.ctx, roomId)
	require.NoError(t, err)
	assert.Equal(t, string(entity.TradeStateCompleted), status.State)
	assert.Equal(t, 1, f.user(t, u1.Id).CompletedTradeCount)
	assert.Equal(t, int64(500), f.user(t, u1.Id).SwapCoinBalance)

	_, err = f.trade.Reset(f.ctx, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestResetWithoutAgreement(t *testing.T) {
	f := newFixture(t)
	_, _, roomId := f.createRoom(t)

	_, err := f.trade.Reset(f.ctx, roomId)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestAppendIsIdempotent(t *testing.T) {
	f := newFixture(t)
	_, _, roomId := f.createRoom(t)
	entries := []string{"offer: bike for guitar", "counter: add a case"}

	first, err := f.trade.AppendTranscriptEntries(f.ctx, roomId, entries)
	require.NoError(t, err)
	second, err := f.trade.AppendTranscriptEntries(f.ctx, roomId, entries)
	require.NoError(t, err)

	assert.Equal(t, 2, first.Added)
	assert.Equal(t, 0, second.Added)
	assert.Len(t, second.Transcript, len(first.Transcript))
	assert.True(t, first.Exists, "append creates the agreement lazily")
	assert.Len(t, f.broadcaster.events(EventTranscriptUpdated), 1)
}

func TestAppendValidation(t *testing.T) {
	f := newFixture(t)
	_, _, roomId := f.createRoom(t)

	_, err := f.trade.AppendTranscriptEntries(f.ctx, roomId, nil)
	assert.ErrorIs(t, err, apperror.ErrValidationFailed)

	_, err = f.trade.AppendTranscriptEntries(f.ctx, roomId, []string{"ok", "   "})
	assert.ErrorIs(t, err, apperror.ErrValidationFailed)
	assert.Nil(t, f.agreement(t, roomId))

	_, err = f.trade.AppendTranscriptEntries(f.ctx, uuid.New(), []string{"x"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestToggleRoundTripReturnsToPending(t *testing.T) {
	f := newFixture(t)
	u1, u2, roomId := f.createRoom(t)
	acceptBoth(t, f, roomId, u1.Id, u2.Id)

	withdrawn, err := f.trade.ToggleAcceptance(f.ctx, roomId, u2.Id)
	require.NoError(t, err)
	assert.False(t, withdrawn.User2Accepted)
	assert.Equal(t, string(entity.TradeStatePending), withdrawn.State)
	assert.Nil(t, withdrawn.CompletedAt)
	assert.Equal(t, "User 2 has withdrawn their acceptance.", withdrawn.Message)

	again, err := f.trade.ToggleAcceptance(f.ctx, roomId, u2.Id)
	require.NoError(t, err)
	assert.True(t, again.User2Accepted)
	assert.Equal(t, string(entity.TradeStateInProgress), again.State)
}

func TestToggleAuthorization(t *testing.T) {
	f := newFixture(t)
	_, _, roomId := f.createRoom(t)

	_, err := f.trade.ToggleAcceptance(f.ctx, roomId, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.Nil(t, f.agreement(t, roomId), "rejected toggles create nothing")

	_, err = f.trade.ToggleAcceptance(f.ctx, uuid.New(), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCompletionSurvivesMissingUser(t *testing.T) {
	f := newFixture(t)
	known := f.createUser(t, "known")
	ghost := uuid.New()

	room := &entity.ChatRoom{User1Id: known.Id, User2Id: ghost, SubjectId: uuid.New()}
	require.NoError(t, f.uow().ChatRoomRepository().Create(f.ctx, room))
	acceptBoth(t, f, room.Id, known.Id, ghost)

	res, err := f.trade.AppendTranscriptEntries(f.ctx, room.Id, []string{"trade successful"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.TradeStateCompleted), res.State)
	assert.False(t, res.RewardGranted)
	assert.NotEmpty(t, res.RewardWarning)

	stored := f.agreement(t, room.Id)
	assert.Equal(t, entity.TradeStateCompleted, stored.State)
	assert.Nil(t, stored.RewardGrantedAt)

	u := f.user(t, known.Id)
	assert.Equal(t, 0, u.CompletedTradeCount)
	assert.Equal(t, int64(0), u.SwapCoinBalance)
	assert.Equal(t, 0, f.events.count("SWAPCOINS_REWARDED"))
}

func TestDeleteAndListAgreements(t *testing.T) {
	f := newFixture(t)
	u1, _, roomId := f.createRoom(t)
	_, err := f.trade.ToggleAcceptance(f.ctx, roomId, u1.Id)
	require.NoError(t, err)

	all, err := f.trade.ListAll(f.ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, roomId, all[0].ChatRoomId)
	assert.Equal(t, u1.Id, all[0].User1Id)

	require.NoError(t, f.trade.Delete(f.ctx, roomId))
	assert.ErrorIs(t, f.trade.Delete(f.ctx, roomId), apperror.ErrNotFound)

	room, err := f.uow().ChatRoomRepository().FindOne(f.ctx, specification.ByID{ID: roomId})
	require.NoError(t, err)
	assert.NotNil(t, room, "deleting the agreement keeps the room")
}

func TestToggleStampsFirstAcceptanceTime(t *testing.T) {
	f := newFixture(t)
	u1, u2, roomId := f.createRoom(t)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	f.trade.(*tradeAgreementService).now = func() time.Time { return fixed }

	acceptBoth(t, f, roomId, u1.Id, u2.Id)
	stored := f.agreement(t, roomId)
	require.NotNil(t, stored.CompletedAt)
	assert.True(t, fixed.Equal(*stored.CompletedAt))
}
