package integration

import (
	"context"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"swappay-be/internal/entity"
	"swappay-be/internal/model"
	"swappay-be/internal/pkg/keymutex"
	"swappay-be/internal/pkg/logger"
	"swappay-be/internal/pkg/metrics"
	"swappay-be/internal/repository/memory"
	"swappay-be/internal/repository/specification"
	"swappay-be/internal/repository/unitofwork"
	"swappay-be/internal/service"
	"swappay-be/pkg/database"
	mpEvents "swappay-be/pkg/marketplace/events"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type discardBroadcaster struct{}

func (discardBroadcaster) Publish(context.Context, string, string, map[string]interface{}) {}

// TestConcurrentCompletionAgainstRealDatabase exercises the row locks that the
// in-memory sqlite tests cannot: many pollers race to complete one agreement.
func TestConcurrentCompletionAgainstRealDatabase(t *testing.T) {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}
	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = database.DriverPostgres
	}

	gormDB, err := database.NewGormDB(driver, dsn)
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(model.All()...))

	ctx := context.Background()
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	nop := logger.NewNopLogger()
	m := metrics.New()
	locks := keymutex.New()
	events := mpEvents.NewNatsPublisher(nil, nop)

	ledger := service.NewLedgerService(uowFactory, m, nop)
	chat := service.NewChatRoomService(uowFactory, locks, discardBroadcaster{}, events, memory.NewRoomMembershipCache(time.Minute), m, nop)
	trade := service.NewTradeAgreementService(uowFactory, ledger, locks, discardBroadcaster{}, events, m, nop)

	users := uowFactory.NewUnitOfWork(ctx).UserRepository()
	a := &entity.User{Username: "it-a", Email: "it-a-" + uuid.NewString() + "@example.com", Role: entity.UserRoleUser}
	b := &entity.User{Username: "it-b", Email: "it-b-" + uuid.NewString() + "@example.com", Role: entity.UserRoleUser}
	require.NoError(t, users.Create(ctx, a))
	require.NoError(t, users.Create(ctx, b))

	room, err := chat.CreateOrReuseRoom(ctx, a.Id, b.Id, uuid.New())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = chat.DeleteRoom(ctx, room.Id, entity.Actor{UserId: a.Id, Role: entity.UserRoleAdmin})
	})

	_, err = trade.ToggleAcceptance(ctx, room.Id, a.Id)
	require.NoError(t, err)
	_, err = trade.ToggleAcceptance(ctx, room.Id, b.Id)
	require.NoError(t, err)
	_, err = trade.AppendTranscriptEntries(ctx, room.Id, []string{"ok"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = trade.AppendTranscriptEntries(ctx, room.Id, []string{entity.CompletionPhrase})
			} else {
				_, _ = trade.GetStatus(ctx, room.Id)
			}
		}(i)
	}
	wg.Wait()

	status, err := trade.GetStatus(ctx, room.Id)
	require.NoError(t, err)
	assert.Equal(t, string(entity.TradeStateCompleted), status.State)

	for _, id := range []uuid.UUID{a.Id, b.Id} {
		bal, err := ledger.GetBalance(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, service.FirstTradeBonus, bal.SwapCoinBalance)
		assert.Equal(t, 1, bal.CompletedTradeCount)

		journal, err := uowFactory.NewUnitOfWork(ctx).SwapCoinTransactionRepository().FindAll(ctx, specification.ByUserID{UserID: id})
		require.NoError(t, err)
		assert.Len(t, journal, 1)
	}
}
