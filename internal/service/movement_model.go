package service

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/bank-server/internal/domain"
	"github.com/carson-networks/bank-server/internal/storage"
)

// Transaction is one ledger record as seen by its owner.
type Transaction struct {
	ID               string
	AccountID        uuid.UUID
	Kind             domain.TransactionKind
	Amount           decimal.Decimal
	ResultingBalance decimal.Decimal
	Status           domain.TransactionStatus
	Description      string
	CreatedAt        time.Time
}

// Transfer is a completed transfer with both parties' snapshots.
type Transfer struct {
	ID                     string
	TransactionID          string
	SenderID               uuid.UUID
	SenderName             string
	SenderAccountNumber    string
	SenderBalanceBefore    decimal.Decimal
	SenderBalanceAfter     decimal.Decimal
	RecipientID            uuid.UUID
	RecipientName          string
	RecipientAccountNumber string
	RecipientBalanceBefore decimal.Decimal
	RecipientBalanceAfter  decimal.Decimal
	Amount                 decimal.Decimal
	Fee                    decimal.Decimal
	Status                 domain.TransferStatus
	Description            string
	CreatedAt              time.Time
	CompletedAt            *time.Time
}

// MovementReceipt is returned by Withdraw and Deposit.
type MovementReceipt struct {
	NewBalance  decimal.Decimal
	Transaction Transaction
	Replayed    bool
}

// TransferReceipt is returned to the sender of a transfer.
type TransferReceipt struct {
	NewBalance decimal.Decimal
	Transfer   Transfer
	Replayed   bool
}

// AmountPolicy bounds every requested amount.
type AmountPolicy struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// Validate rejects amounts that are not positive, carry more than two
// decimal places, or fall outside [Min, Max].
func (p AmountPolicy) Validate(amount decimal.Decimal) error {
	if err := domain.CheckMoney(amount); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	if !p.Min.IsZero() && amount.LessThan(p.Min) {
		return domain.ErrInvalidAmount.WithMessage("amount is below the minimum of " + p.Min.StringFixed(2))
	}
	if !p.Max.IsZero() && amount.GreaterThan(p.Max) {
		return domain.ErrInvalidAmount.WithMessage("amount is above the maximum of " + p.Max.StringFixed(2))
	}
	return nil
}

func transactionFromStorage(row *storage.Transaction) Transaction {
	return Transaction{
		ID:               row.ID,
		AccountID:        row.AccountID,
		Kind:             row.Kind,
		Amount:           row.Amount,
		ResultingBalance: row.ResultingBalance,
		Status:           row.Status,
		Description:      row.Description,
		CreatedAt:        row.CreatedAt,
	}
}

func transferFromStorage(row *storage.Transfer) Transfer {
	return Transfer{
		ID:                     row.ID,
		TransactionID:          row.TransactionID,
		SenderID:               row.SenderID,
		SenderName:             row.SenderName,
		SenderAccountNumber:    row.SenderAccountNumber,
		SenderBalanceBefore:    row.SenderBalanceBefore,
		SenderBalanceAfter:     row.SenderBalanceAfter,
		RecipientID:            row.RecipientID,
		RecipientName:          row.RecipientName,
		RecipientAccountNumber: row.RecipientAccountNumber,
		RecipientBalanceBefore: row.RecipientBalanceBefore,
		RecipientBalanceAfter:  row.RecipientBalanceAfter,
		Amount:                 row.Amount,
		Fee:                    row.Fee,
		Status:                 row.Status,
		Description:            row.Description,
		CreatedAt:              row.CreatedAt,
		CompletedAt:            row.CompletedAt,
	}
}
