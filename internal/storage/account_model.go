package storage

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/bank-server/internal/domain"
)

// Account represents an account record.
type Account struct {
	ID            uuid.UUID            `db:"id"`
	AccountNumber string               `db:"account_number"`
	CardNumber    string               `db:"card_number"`
	Name          string               `db:"name"`
	Balance       decimal.Decimal      `db:"balance"`
	Status        domain.AccountStatus `db:"status"`
	CardStatus    domain.CardStatus    `db:"card_status"`
	CreatedAt     time.Time            `db:"created_at"`
	UpdatedAt     time.Time            `db:"updated_at"`
}

// AccountCreate is the input for creating a new account.
type AccountCreate struct {
	AccountNumber string
	CardNumber    string
	Name          string
	Balance       decimal.Decimal
	Status        domain.AccountStatus
	CardStatus    domain.CardStatus
}

// AccountFilter specifies filters for listing accounts.
type AccountFilter struct {
	Limit  int
	Offset int
}

// IAccountTable defines the read operations on accounts.
// This abstraction allows swapping the implementation (e.g. Bob) without changing callers.
type IAccountTable interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByNumber(ctx context.Context, accountNumber string) (*Account, error)
	List(ctx context.Context, filter *AccountFilter) ([]*Account, error)
}

// IAccountWriter adds the operations that are only valid inside a unit of work.
type IAccountWriter interface {
	IAccountTable
	// FindByIDsForUpdate locks the given rows in ascending id order and
	// returns them in that order. Locks are held until commit or rollback.
	FindByIDsForUpdate(ctx context.Context, ids ...uuid.UUID) ([]*Account, error)
	Insert(ctx context.Context, create *AccountCreate) (uuid.UUID, error)
	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AccountStatus, cardStatus domain.CardStatus) error
}
