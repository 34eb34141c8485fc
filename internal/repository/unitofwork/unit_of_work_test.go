package unitofwork

import (
	"context"
	"errors"
	"testing"
	"time"

	"swappay-be/internal/entity"
	"swappay-be/internal/pkg/testdb"
	"swappay-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRoom(t *testing.T, uow UnitOfWork) (*entity.User, *entity.User, *entity.ChatRoom) {
	t.Helper()
	ctx := context.Background()

	u1 := &entity.User{Username: "ana", Email: uuid.NewString() + "@example.com", Role: entity.UserRoleUser}
	u2 := &entity.User{Username: "beto", Email: uuid.NewString() + "@example.com", Role: entity.UserRoleUser}
	require.NoError(t, uow.UserRepository().Create(ctx, u1))
	require.NoError(t, uow.UserRepository().Create(ctx, u2))

	room := &entity.ChatRoom{User1Id: u1.Id, User2Id: u2.Id, SubjectId: uuid.New()}
	require.NoError(t, uow.ChatRoomRepository().Create(ctx, room))
	return u1, u2, room
}

func TestRepositoriesRoundTrip(t *testing.T) {
	db := testdb.New(t)
	uow := NewRepositoryFactory(db).NewUnitOfWork(context.Background())
	ctx := context.Background()
	u1, u2, room := seedRoom(t, uow)

	t.Run("room lookup by unordered pair", func(t *testing.T) {
		found, err := uow.ChatRoomRepository().FindOne(ctx, specification.ByParticipantPair{
			UserA: u2.Id, UserB: u1.Id, SubjectID: room.SubjectId,
		})
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, room.Id, found.Id)

		missing, err := uow.ChatRoomRepository().FindOne(ctx, specification.ByParticipantPair{
			UserA: u1.Id, UserB: u2.Id, SubjectID: uuid.New(),
		})
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("visible rooms skip hidden ones", func(t *testing.T) {
		now := time.Now()
		room.SetHidden(u1.Id, true, now)
		require.NoError(t, uow.ChatRoomRepository().Update(ctx, room))

		rooms, err := uow.ChatRoomRepository().FindAll(ctx,
			specification.ByParticipant{UserID: u1.Id},
			specification.VisibleTo{UserID: u1.Id},
		)
		require.NoError(t, err)
		assert.Empty(t, rooms)

		rooms, err = uow.ChatRoomRepository().FindAll(ctx,
			specification.ByParticipant{UserID: u2.Id},
			specification.VisibleTo{UserID: u2.Id},
		)
		require.NoError(t, err)
		assert.Len(t, rooms, 1)
	})

	t.Run("agreement transcript survives persistence", func(t *testing.T) {
		agreement := entity.NewTradeAgreement(room.Id)
		require.NoError(t, uow.TradeAgreementRepository().Create(ctx, agreement))

		agreement.AppendEntries([]string{"offer sent", entity.CompletionPhrase})
		require.NoError(t, uow.TradeAgreementRepository().Update(ctx, agreement))

		found, err := uow.TradeAgreementRepository().FindOne(ctx, specification.ByChatRoomID{ChatRoomID: room.Id})
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, []string{entity.DefaultTranscriptEntry, "offer sent", entity.CompletionPhrase}, found.Transcript)
		assert.Equal(t, entity.TradeStatePending, found.State)
	})

	t.Run("message age sweep", func(t *testing.T) {
		old := &entity.Message{ChatRoomId: room.Id, SenderId: u1.Id, Kind: entity.MessageKindText, Content: "old", CreatedAt: time.Now().Add(-96 * time.Hour)}
		fresh := &entity.Message{ChatRoomId: room.Id, SenderId: u2.Id, Kind: entity.MessageKindText, Content: "fresh"}
		require.NoError(t, uow.MessageRepository().Create(ctx, old))
		require.NoError(t, uow.MessageRepository().Create(ctx, fresh))

		deleted, err := uow.MessageRepository().DeleteOlderThan(ctx, time.Now().Add(-72*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		left, err := uow.MessageRepository().FindAll(ctx, specification.ByChatRoomID{ChatRoomID: room.Id})
		require.NoError(t, err)
		require.Len(t, left, 1)
		assert.Equal(t, "fresh", left[0].Content)
	})

	t.Run("ledger update on unknown user", func(t *testing.T) {
		err := uow.UserRepository().UpdateLedger(ctx, uuid.New(), 10, 1)
		assert.Error(t, err)
	})
}

func TestRoomChildrenFollowTheRoom(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	uow := NewUnitOfWork(db)
	u1, _, room := seedRoom(t, uow)

	orphan := &entity.Message{ChatRoomId: uuid.New(), SenderId: u1.Id, Kind: entity.MessageKindText, Content: "nowhere"}
	assert.Error(t, uow.MessageRepository().Create(ctx, orphan), "messages need an existing room")

	msg := &entity.Message{ChatRoomId: room.Id, SenderId: u1.Id, Kind: entity.MessageKindText, Content: "hi"}
	require.NoError(t, uow.MessageRepository().Create(ctx, msg))
	require.NoError(t, uow.TradeAgreementRepository().Create(ctx, entity.NewTradeAgreement(room.Id)))

	require.NoError(t, uow.ChatRoomRepository().Delete(ctx, room.Id))

	messages, err := uow.MessageRepository().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, messages)
	agreement, err := uow.TradeAgreementRepository().FindOne(ctx, specification.ByChatRoomID{ChatRoomID: room.Id})
	require.NoError(t, err)
	assert.Nil(t, agreement)
}

func TestTransactionRollsBack(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	uow := NewUnitOfWork(db)
	u1, _, _ := seedRoom(t, uow)

	boom := errors.New("boom")
	err := uow.Transaction(ctx, func(tx UnitOfWork) error {
		require.NoError(t, tx.UserRepository().UpdateLedger(ctx, u1.Id, 999, 7))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	reloaded, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: u1.Id})
	require.NoError(t, err)
	assert.Equal(t, int64(0), reloaded.SwapCoinBalance)
	assert.Equal(t, 0, reloaded.CompletedTradeCount)
}

func TestNestedTransactionIsSavepoint(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	uow := NewUnitOfWork(db)
	u1, u2, _ := seedRoom(t, uow)

	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.UserRepository().UpdateLedger(ctx, u1.Id, 5, 1))

	err := uow.Transaction(ctx, func(inner UnitOfWork) error {
		require.NoError(t, inner.UserRepository().UpdateLedger(ctx, u2.Id, 5, 1))
		return errors.New("inner failure")
	})
	require.Error(t, err)
	require.NoError(t, uow.Commit())

	first, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: u1.Id})
	require.NoError(t, err)
	second, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: u2.Id})
	require.NoError(t, err)

	assert.Equal(t, int64(5), first.SwapCoinBalance, "outer write is kept")
	assert.Equal(t, int64(0), second.SwapCoinBalance, "savepoint write is rolled back")
}
