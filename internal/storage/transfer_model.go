package storage

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/bank-server/internal/domain"
)

// Transfer links the two ledger records of a transfer with a snapshot of
// both parties before and after the move.
type Transfer struct {
	ID                     string                `db:"id"`
	TransactionID          string                `db:"transaction_id"`
	SenderID               uuid.UUID             `db:"sender_id"`
	SenderName             string                `db:"sender_name"`
	SenderAccountNumber    string                `db:"sender_account_number"`
	SenderBalanceBefore    decimal.Decimal       `db:"sender_balance_before"`
	SenderBalanceAfter     decimal.Decimal       `db:"sender_balance_after"`
	RecipientID            uuid.UUID             `db:"recipient_id"`
	RecipientName          string                `db:"recipient_name"`
	RecipientAccountNumber string                `db:"recipient_account_number"`
	RecipientBalanceBefore decimal.Decimal       `db:"recipient_balance_before"`
	RecipientBalanceAfter  decimal.Decimal       `db:"recipient_balance_after"`
	Amount                 decimal.Decimal       `db:"amount"`
	Fee                    decimal.Decimal       `db:"fee"`
	Status                 domain.TransferStatus `db:"status"`
	Description            string                `db:"description"`
	CreatedAt              time.Time             `db:"created_at"`
	CompletedAt            *time.Time            `db:"completed_at"`
}

// TransferFilter specifies filters for listing transfers from one party's
// perspective.
type TransferFilter struct {
	AccountID uuid.UUID
	Direction domain.TransferDirection
	Limit     int
	Offset    int
}

// ITransferTable defines the read operations on transfers.
type ITransferTable interface {
	FindByID(ctx context.Context, id string) (*Transfer, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*Transfer, error)
	List(ctx context.Context, filter *TransferFilter) ([]*Transfer, error)
}

// ITransferWriter appends transfer records inside a unit of work.
type ITransferWriter interface {
	ITransferTable
	Insert(ctx context.Context, transfer *Transfer) (string, error)
}
