package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleUser         UserRole = "user"
	UserRoleAdmin        UserRole = "admin"
	UserRoleCollaborator UserRole = "collaborator"
)

// User carries the ledger-relevant part of a marketplace account.
type User struct {
	Id                  uuid.UUID
	Username            string
	Email               string
	Role                UserRole
	SwapCoinBalance     int64
	CompletedTradeCount int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserId uuid.UUID
	Role   UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == UserRoleAdmin
}
