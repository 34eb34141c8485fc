package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"swappay-be/internal/entity"
	"swappay-be/internal/pkg/keymutex"
	"swappay-be/internal/pkg/logger"
	"swappay-be/internal/pkg/metrics"
	"swappay-be/internal/pkg/testdb"
	"swappay-be/internal/repository/memory"
	"swappay-be/internal/repository/specification"
	"swappay-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type broadcastCall struct {
	Channel string
	Event   string
	Payload map[string]interface{}
}

type recordingBroadcaster struct {
	mu    sync.Mutex
	calls []broadcastCall
}

func (b *recordingBroadcaster) Publish(_ context.Context, channel, event string, payload map[string]interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, broadcastCall{Channel: channel, Event: event, Payload: payload})
}

func (b *recordingBroadcaster) events(name string) []broadcastCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []broadcastCall
	for _, c := range b.calls {
		if c.Event == name {
			out = append(out, c)
		}
	}
	return out
}

type recordingEvents struct {
	mu       sync.Mutex
	types    []string
	rewarded []int64
}

func (e *recordingEvents) record(t string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.types = append(e.types, t)
}

func (e *recordingEvents) PublishTradeCompleted(context.Context, uuid.UUID, uuid.UUID, uuid.UUID, uuid.UUID, time.Time) {
	e.record("TRADE_COMPLETED")
}

func (e *recordingEvents) PublishSwapCoinsRewarded(_ context.Context, _ uuid.UUID, _ uuid.UUID, amount int64, _ string, _ int64) {
	e.record("SWAPCOINS_REWARDED")
	e.mu.Lock()
	e.rewarded = append(e.rewarded, amount)
	e.mu.Unlock()
}

func (e *recordingEvents) PublishChatRoomDeleted(context.Context, uuid.UUID, uuid.UUID, uuid.UUID, string) {
	e.record("CHAT_ROOM_DELETED")
}

func (e *recordingEvents) count(t string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, x := range e.types {
		if x == t {
			n++
		}
	}
	return n
}

type fixture struct {
	ctx         context.Context
	uowFactory  unitofwork.RepositoryFactory
	broadcaster *recordingBroadcaster
	events      *recordingEvents
	metrics     *metrics.Metrics
	locks       *keymutex.KeyMutex
	ledger      ILedgerService
	chat        IChatRoomService
	trade       ITradeAgreementService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testdb.New(t)
	f := &fixture{
		ctx:         context.Background(),
		uowFactory:  unitofwork.NewRepositoryFactory(db),
		broadcaster: &recordingBroadcaster{},
		events:      &recordingEvents{},
		metrics:     metrics.New(),
		locks:       keymutex.New(),
	}
	log := logger.NewNopLogger()
	locks := f.locks

	f.ledger = NewLedgerService(f.uowFactory, f.metrics, log)
	f.chat = NewChatRoomService(f.uowFactory, locks, f.broadcaster, f.events, memory.NewRoomMembershipCache(time.Minute), f.metrics, log)
	f.trade = NewTradeAgreementService(f.uowFactory, f.ledger, locks, f.broadcaster, f.events, f.metrics, log)
	return f
}

func (f *fixture) uow() unitofwork.UnitOfWork {
	return f.uowFactory.NewUnitOfWork(f.ctx)
}

func (f *fixture) createUser(t *testing.T, name string) *entity.User {
	t.Helper()
	u := &entity.User{Username: name, Email: name + "-" + uuid.NewString() + "@example.com", Role: entity.UserRoleUser}
	require.NoError(t, f.uow().UserRepository().Create(f.ctx, u))
	return u
}

func (f *fixture) user(t *testing.T, id uuid.UUID) *entity.User {
	t.Helper()
	u, err := f.uow().UserRepository().FindOne(f.ctx, specification.ByID{ID: id})
	require.NoError(t, err)
	require.NotNil(t, u)
	return u
}

// createRoom opens a room between two fresh users.
func (f *fixture) createRoom(t *testing.T) (*entity.User, *entity.User, uuid.UUID) {
	t.Helper()
	u1 := f.createUser(t, "ana")
	u2 := f.createUser(t, "beto")
	room, err := f.chat.CreateOrReuseRoom(f.ctx, u1.Id, u2.Id, uuid.New())
	require.NoError(t, err)
	return u1, u2, room.Id
}

func (f *fixture) agreement(t *testing.T, roomId uuid.UUID) *entity.TradeAgreement {
	t.Helper()
	a, err := f.uow().TradeAgreementRepository().FindOne(f.ctx, specification.ByChatRoomID{ChatRoomID: roomId})
	require.NoError(t, err)
	return a
}
