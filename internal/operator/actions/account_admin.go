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

const (
	accountNumberDigits = 10
	cardNumberDigits    = 16
	numberAttempts      = 5
)

// OpenAccount registers a new active account with freshly generated account
// and card numbers. A positive opening balance is recorded as a deposit.
type OpenAccount struct {
	Deps           *Dependencies
	Name           string
	OpeningBalance decimal.Decimal

	Result *storage.Account
	IAction
}

func (a *OpenAccount) Perform(ctx context.Context, writer *storage.Writer) error {
	if err := domain.CheckMoney(a.OpeningBalance); err != nil {
		return err
	}
	if a.OpeningBalance.IsNegative() {
		return domain.ErrInvalidAmount.WithMessage("opening balance cannot be negative")
	}

	accountNumber, err := a.freeAccountNumber(ctx, writer)
	if err != nil {
		return err
	}
	cardNumber, err := a.Deps.IDs.Digits(cardNumberDigits)
	if err != nil {
		return err
	}

	accountID, err := writer.Accounts.Insert(ctx, &storage.AccountCreate{
		AccountNumber: accountNumber,
		CardNumber:    cardNumber,
		Name:          a.Name,
		Balance:       a.OpeningBalance,
		Status:        domain.AccountStatusActive,
		CardStatus:    domain.CardStatusActive,
	})
	if err != nil {
		return err
	}

	if a.OpeningBalance.IsPositive() {
		_, err = a.Deps.Ledger.AppendTransaction(ctx, writer.Transactions, &storage.Transaction{
			AccountID:        accountID,
			Kind:             domain.TransactionKindDeposit,
			Amount:           a.OpeningBalance,
			ResultingBalance: a.OpeningBalance,
			Status:           domain.TransactionStatusCompleted,
			Description:      "Opening deposit",
			CreatedAt:        a.Deps.Clock(),
		})
		if err != nil {
			return err
		}
	}

	a.Result, err = writer.Accounts.FindByID(ctx, accountID)
	return err
}

func (a *OpenAccount) freeAccountNumber(ctx context.Context, writer *storage.Writer) (string, error) {
	for i := 0; i < numberAttempts; i++ {
		number, err := a.Deps.IDs.Digits(accountNumberDigits)
		if err != nil {
			return "", err
		}
		_, err = writer.Accounts.FindByNumber(ctx, number)
		if errors.Is(err, storage.ErrNotFound) {
			return number, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("no free account number after %d attempts", numberAttempts)
}

// SetAccountStatus changes an account's status and card status together.
type SetAccountStatus struct {
	AccountID  uuid.UUID
	Status     domain.AccountStatus
	CardStatus domain.CardStatus

	Result *storage.Account
	IAction
}

func (a *SetAccountStatus) Perform(ctx context.Context, writer *storage.Writer) error {
	if !a.Status.Valid() || !a.CardStatus.Valid() {
		return domain.ErrInvalidTransferDetails.WithMessage("unknown account or card status")
	}
	account, err := lockAccount(ctx, writer, a.AccountID)
	if err != nil {
		return err
	}
	if err = writer.Accounts.UpdateStatus(ctx, account.ID, a.Status, a.CardStatus); err != nil {
		return err
	}
	a.Result, err = writer.Accounts.FindByID(ctx, account.ID)
	return err
}

// UpdateCeilings replaces an account's four limit ceilings.
type UpdateCeilings struct {
	Deps      *Dependencies
	AccountID uuid.UUID
	Ceilings  limits.Ceilings

	Result *limits.Snapshot
	IAction
}

func (a *UpdateCeilings) Perform(ctx context.Context, writer *storage.Writer) error {
	account, err := lockAccount(ctx, writer, a.AccountID)
	if err != nil {
		return err
	}
	a.Result, err = a.Deps.Limits.SetCeilings(ctx, writer.Limits, account.ID, a.Ceilings, a.Deps.Clock())
	return err
}
