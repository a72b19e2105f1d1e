package actions

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/bank-server/internal/domain"
	"github.com/carson-networks/bank-server/internal/limits"
	"github.com/carson-networks/bank-server/internal/storage"
)

// MovementResult is the receipt of a withdrawal or deposit.
type MovementResult struct {
	NewBalance  decimal.Decimal
	Transaction *storage.Transaction
	// Replayed is set when the idempotency key matched an earlier request and
	// nothing was written. NewBalance is then the balance recorded by that
	// request, not the current one.
	Replayed bool
}

// Withdraw takes cash out of an account at an ATM.
type Withdraw struct {
	Deps           *Dependencies
	AccountID      uuid.UUID
	Amount         decimal.Decimal
	IdempotencyKey string

	Result *MovementResult
	IAction
}

func (a *Withdraw) Perform(ctx context.Context, writer *storage.Writer) error {
	account, err := lockAccount(ctx, writer, a.AccountID)
	if err != nil {
		return err
	}

	replay, err := replayMovement(ctx, writer, account.ID, a.IdempotencyKey, domain.TransactionKindWithdraw, a.Amount)
	if err != nil || replay != nil {
		a.Result = replay
		return err
	}

	if err = requireCard(account); err != nil {
		return err
	}
	if a.Amount.GreaterThan(account.Balance) {
		return domain.ErrInsufficientFunds
	}

	now := a.Deps.Clock()
	err = a.Deps.Limits.Reserve(ctx, writer.Limits, account.ID, limits.KindWithdrawal, a.Amount, now)
	if err != nil {
		return err
	}

	newBalance := account.Balance.Sub(a.Amount)
	if err = writer.Accounts.UpdateBalance(ctx, account.ID, newBalance); err != nil {
		return err
	}

	record := &storage.Transaction{
		AccountID:        account.ID,
		Kind:             domain.TransactionKindWithdraw,
		Amount:           a.Amount,
		ResultingBalance: newBalance,
		Status:           domain.TransactionStatusCompleted,
		Description:      "ATM withdrawal",
		IdempotencyKey:   a.IdempotencyKey,
		CreatedAt:        now,
	}
	if _, err = a.Deps.Ledger.AppendTransaction(ctx, writer.Transactions, record); err != nil {
		return err
	}

	a.Result = &MovementResult{NewBalance: newBalance, Transaction: record}
	return nil
}

// Deposit puts cash into an account at an ATM. Deposits are not limited.
type Deposit struct {
	Deps           *Dependencies
	AccountID      uuid.UUID
	Amount         decimal.Decimal
	IdempotencyKey string

	Result *MovementResult
	IAction
}

func (a *Deposit) Perform(ctx context.Context, writer *storage.Writer) error {
	account, err := lockAccount(ctx, writer, a.AccountID)
	if err != nil {
		return err
	}

	replay, err := replayMovement(ctx, writer, account.ID, a.IdempotencyKey, domain.TransactionKindDeposit, a.Amount)
	if err != nil || replay != nil {
		a.Result = replay
		return err
	}

	if err = requireCard(account); err != nil {
		return err
	}

	now := a.Deps.Clock()
	newBalance := account.Balance.Add(a.Amount)
	if err = writer.Accounts.UpdateBalance(ctx, account.ID, newBalance); err != nil {
		return err
	}

	record := &storage.Transaction{
		AccountID:        account.ID,
		Kind:             domain.TransactionKindDeposit,
		Amount:           a.Amount,
		ResultingBalance: newBalance,
		Status:           domain.TransactionStatusCompleted,
		Description:      "ATM deposit",
		IdempotencyKey:   a.IdempotencyKey,
		CreatedAt:        now,
	}
	if _, err = a.Deps.Ledger.AppendTransaction(ctx, writer.Transactions, record); err != nil {
		return err
	}

	a.Result = &MovementResult{NewBalance: newBalance, Transaction: record}
	return nil
}

// replayMovement looks up an earlier transaction recorded under key. It
// returns nil, nil when the key is unused.
func replayMovement(ctx context.Context, writer *storage.Writer, accountID uuid.UUID, key string, kind domain.TransactionKind, amount decimal.Decimal) (*MovementResult, error) {
	if key == "" {
		return nil, nil
	}
	prior, err := writer.Transactions.FindByIdempotencyKey(ctx, accountID, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if prior.Kind != kind || !prior.Amount.Equal(amount) {
		return nil, domain.ErrIdempotencyConflict
	}
	return &MovementResult{
		NewBalance:  prior.ResultingBalance,
		Transaction: prior,
		Replayed:    true,
	}, nil
}
