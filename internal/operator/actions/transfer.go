package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/bank-server/internal/domain"
	"github.com/carson-networks/bank-server/internal/limits"
	"github.com/carson-networks/bank-server/internal/storage"
)

// TransferResult is the sender's receipt of a transfer.
type TransferResult struct {
	NewBalance           decimal.Decimal
	Transfer             *storage.Transfer
	SenderTransaction    *storage.Transaction
	RecipientTransaction *storage.Transaction
	Replayed             bool
}

// Transfer moves money between two accounts. Both rows are locked in id
// order and re-checked after locking, so a recipient frozen after a verify
// call is still rejected here.
type Transfer struct {
	Deps            *Dependencies
	SenderID        uuid.UUID
	ToAccountNumber string
	Amount          decimal.Decimal
	Description     string
	IdempotencyKey  string

	Result *TransferResult
	IAction
}

func (a *Transfer) Perform(ctx context.Context, writer *storage.Writer) error {
	sender, err := writer.Accounts.FindByID(ctx, a.SenderID)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.ErrAccountNotFound
	}
	if err != nil {
		return err
	}
	if sender.AccountNumber == a.ToAccountNumber {
		return domain.ErrSelfTransfer
	}

	recipient, err := writer.Accounts.FindByNumber(ctx, a.ToAccountNumber)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.ErrRecipientNotFound
	}
	if err != nil {
		return err
	}

	locked, err := writer.Accounts.FindByIDsForUpdate(ctx, sender.ID, recipient.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.ErrAccountNotFound
	}
	if err != nil {
		return err
	}
	for _, row := range locked {
		switch row.ID {
		case sender.ID:
			sender = row
		case recipient.ID:
			recipient = row
		}
	}

	replay, err := a.replay(ctx, writer, sender.ID)
	if err != nil || replay != nil {
		a.Result = replay
		return err
	}

	if err = requireActive(sender); err != nil {
		return err
	}
	if recipient.Status != domain.AccountStatusActive {
		return domain.ErrRecipientInactive
	}
	if a.Amount.GreaterThan(sender.Balance) {
		return domain.ErrInsufficientFunds
	}

	now := a.Deps.Clock()
	err = a.Deps.Limits.Reserve(ctx, writer.Limits, sender.ID, limits.KindTransfer, a.Amount, now)
	if err != nil {
		return err
	}

	senderAfter := sender.Balance.Sub(a.Amount)
	recipientAfter := recipient.Balance.Add(a.Amount)
	if err = writer.Accounts.UpdateBalance(ctx, sender.ID, senderAfter); err != nil {
		return err
	}
	if err = writer.Accounts.UpdateBalance(ctx, recipient.ID, recipientAfter); err != nil {
		return err
	}

	description := a.Description
	if description == "" {
		description = fmt.Sprintf("Transfer to %s", recipient.Name)
	}

	senderRecord := &storage.Transaction{
		AccountID:        sender.ID,
		Kind:             domain.TransactionKindTransfer,
		Amount:           a.Amount.Neg(),
		ResultingBalance: senderAfter,
		Status:           domain.TransactionStatusCompleted,
		Description:      description,
		IdempotencyKey:   a.IdempotencyKey,
		CreatedAt:        now,
	}
	if _, err = a.Deps.Ledger.AppendTransaction(ctx, writer.Transactions, senderRecord); err != nil {
		return err
	}

	recipientRecord := &storage.Transaction{
		AccountID:        recipient.ID,
		Kind:             domain.TransactionKindTransfer,
		Amount:           a.Amount,
		ResultingBalance: recipientAfter,
		Status:           domain.TransactionStatusCompleted,
		Description:      fmt.Sprintf("Transfer from %s", sender.Name),
		CreatedAt:        now,
	}
	if _, err = a.Deps.Ledger.AppendTransaction(ctx, writer.Transactions, recipientRecord); err != nil {
		return err
	}

	completedAt := now
	transfer := &storage.Transfer{
		TransactionID:          senderRecord.ID,
		SenderID:               sender.ID,
		SenderName:             sender.Name,
		SenderAccountNumber:    sender.AccountNumber,
		SenderBalanceBefore:    sender.Balance,
		SenderBalanceAfter:     senderAfter,
		RecipientID:            recipient.ID,
		RecipientName:          recipient.Name,
		RecipientAccountNumber: recipient.AccountNumber,
		RecipientBalanceBefore: recipient.Balance,
		RecipientBalanceAfter:  recipientAfter,
		Amount:                 a.Amount,
		Fee:                    decimal.Zero,
		Status:                 domain.TransferStatusCompleted,
		Description:            description,
		CreatedAt:              now,
		CompletedAt:            &completedAt,
	}
	if _, err = a.Deps.Ledger.AppendTransfer(ctx, writer.Transfers, transfer); err != nil {
		return err
	}

	a.Result = &TransferResult{
		NewBalance:           senderAfter,
		Transfer:             transfer,
		SenderTransaction:    senderRecord,
		RecipientTransaction: recipientRecord,
	}
	return nil
}

// replay returns the stored receipt when the sender already used the
// idempotency key for the same transfer.
func (a *Transfer) replay(ctx context.Context, writer *storage.Writer, senderID uuid.UUID) (*TransferResult, error) {
	if a.IdempotencyKey == "" {
		return nil, nil
	}
	prior, err := writer.Transactions.FindByIdempotencyKey(ctx, senderID, a.IdempotencyKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if prior.Kind != domain.TransactionKindTransfer {
		return nil, domain.ErrIdempotencyConflict
	}
	transfer, err := writer.Transfers.FindByTransactionID(ctx, prior.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, domain.ErrIdempotencyConflict
	}
	if err != nil {
		return nil, err
	}
	if !transfer.Amount.Equal(a.Amount) || transfer.RecipientAccountNumber != a.ToAccountNumber {
		return nil, domain.ErrIdempotencyConflict
	}
	return &TransferResult{
		NewBalance:        prior.ResultingBalance,
		Transfer:          transfer,
		SenderTransaction: prior,
		Replayed:          true,
	}, nil
}
