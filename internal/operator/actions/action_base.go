package actions

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/bank-server/internal/domain"
	"github.com/carson-networks/bank-server/internal/id"
	"github.com/carson-networks/bank-server/internal/ledger"
	"github.com/carson-networks/bank-server/internal/limits"
	"github.com/carson-networks/bank-server/internal/storage"
)

// IAction is one unit of work. Perform runs inside a single storage
// transaction; returning an error rolls everything back.
type IAction interface {
	Perform(ctx context.Context, writer *storage.Writer) error
}

// Dependencies are the collaborators shared by every action.
type Dependencies struct {
	Limits *limits.Tracker
	Ledger *ledger.Writer
	IDs    *id.Generator
	Now    func() time.Time
}

// Clock returns the current time from Now, or time.Now when unset.
func (d *Dependencies) Clock() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// lockAccount takes the row lock of one account.
func lockAccount(ctx context.Context, writer *storage.Writer, accountID uuid.UUID) (*storage.Account, error) {
	rows, err := writer.Accounts.FindByIDsForUpdate(ctx, accountID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return rows[0], nil
}

// requireActive checks the freshly locked row, never an earlier read.
func requireActive(account *storage.Account) error {
	if account.Status != domain.AccountStatusActive {
		return domain.ErrAccountNotActive.WithMessage("account is " + string(account.Status))
	}
	return nil
}

// requireCard additionally requires a usable card for ATM operations.
func requireCard(account *storage.Account) error {
	if err := requireActive(account); err != nil {
		return err
	}
	if account.CardStatus != domain.CardStatusActive {
		return domain.ErrAccountNotActive.WithMessage("card is blocked")
	}
	return nil
}
