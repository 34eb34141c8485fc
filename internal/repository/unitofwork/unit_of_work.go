package unitofwork

import (
	"context"

	"swappay-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	// Transaction runs fn in a transaction scoped to this unit of work.
	// Inside an open transaction it becomes a savepoint: an error from fn
	// rolls back only what fn wrote.
	Transaction(ctx context.Context, fn func(uow UnitOfWork) error) error

	UserRepository() contract.UserRepository
	ChatRoomRepository() contract.ChatRoomRepository
	MessageRepository() contract.MessageRepository
	TradeAgreementRepository() contract.TradeAgreementRepository
	SwapCoinTransactionRepository() contract.SwapCoinTransactionRepository
}
