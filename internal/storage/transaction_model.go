package storage

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/bank-server/internal/domain"
)

// Transaction represents an immutable ledger record for one account.
type Transaction struct {
	ID               string                   `db:"id"`
	AccountID        uuid.UUID                `db:"account_id"`
	Kind             domain.TransactionKind   `db:"kind"`
	Amount           decimal.Decimal          `db:"amount"`
	ResultingBalance decimal.Decimal          `db:"resulting_balance"`
	Status           domain.TransactionStatus `db:"status"`
	Description      string                   `db:"description"`
	IdempotencyKey   string                   `db:"idempotency_key"`
	CreatedAt        time.Time                `db:"created_at"`
}

// TransactionFilter specifies filters for listing transactions.
type TransactionFilter struct {
	AccountID       *uuid.UUID
	Limit           int
	Offset          int
	MaxCreationTime *time.Time
}

// ITransactionTable defines the read operations on the ledger.
type ITransactionTable interface {
	FindByID(ctx context.Context, id string) (*Transaction, error)
	FindByIdempotencyKey(ctx context.Context, accountID uuid.UUID, key string) (*Transaction, error)
	List(ctx context.Context, filter *TransactionFilter) ([]*Transaction, error)
}

// ITransactionWriter appends ledger records inside a unit of work.
type ITransactionWriter interface {
	ITransactionTable
	Insert(ctx context.Context, transaction *Transaction) (string, error)
}
