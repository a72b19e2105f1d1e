package limits

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/bank-server/internal/domain"
	"github.com/carson-networks/bank-server/internal/storage"
)

// Ceilings are the four configured limits of an account.
type Ceilings struct {
	DailyWithdrawal   decimal.Decimal
	MonthlyWithdrawal decimal.Decimal
	DailyTransfer     decimal.Decimal
	MonthlyTransfer   decimal.Decimal
}

// Validate requires every ceiling to be positive and no daily ceiling to
// exceed its monthly one.
func (c Ceilings) Validate() error {
	for _, v := range []decimal.Decimal{c.DailyWithdrawal, c.MonthlyWithdrawal, c.DailyTransfer, c.MonthlyTransfer} {
		if err := domain.CheckMoney(v); err != nil {
			return domain.ErrInvalidAmount.WithMessage("limit ceilings must fit two decimal places")
		}
		if !v.IsPositive() {
			return domain.ErrInvalidAmount.WithMessage("limit ceilings must be positive")
		}
	}
	if c.DailyWithdrawal.GreaterThan(c.MonthlyWithdrawal) || c.DailyTransfer.GreaterThan(c.MonthlyTransfer) {
		return domain.ErrInvalidAmount.WithMessage("a daily ceiling cannot exceed its monthly ceiling")
	}
	return nil
}

// Usage is the state of one kind across both windows.
type Usage struct {
	DailyLimit       decimal.Decimal
	DailyUsed        decimal.Decimal
	DailyRemaining   decimal.Decimal
	MonthlyLimit     decimal.Decimal
	MonthlyUsed      decimal.Decimal
	MonthlyRemaining decimal.Decimal
}

// Snapshot is the read-only view returned by GetLimits.
type Snapshot struct {
	AccountID        uuid.UUID
	Withdrawal       Usage
	Transfer         Usage
	LastDailyReset   time.Time
	LastMonthlyReset time.Time
}

// Tracker creates counters lazily with the configured defaults and keeps
// their authorize and consume steps inside the caller's unit of work.
type Tracker struct {
	defaults Ceilings
	location *time.Location
}

func NewTracker(defaults Ceilings, location *time.Location) *Tracker {
	if location == nil {
		location = time.Local
	}
	return &Tracker{defaults: defaults, location: location}
}

func (t *Tracker) initial(accountID uuid.UUID, now time.Time) *storage.Limit {
	return &storage.Limit{
		AccountID:              accountID,
		DailyWithdrawalLimit:   t.defaults.DailyWithdrawal,
		MonthlyWithdrawalLimit: t.defaults.MonthlyWithdrawal,
		DailyTransferLimit:     t.defaults.DailyTransfer,
		MonthlyTransferLimit:   t.defaults.MonthlyTransfer,
		DailyWithdrawalUsed:    decimal.Zero,
		MonthlyWithdrawalUsed:  decimal.Zero,
		DailyTransferUsed:      decimal.Zero,
		MonthlyTransferUsed:    decimal.Zero,
		LastDailyReset:         now,
		LastMonthlyReset:       now,
	}
}

// Reserve locks (or creates) the account's counter through table, authorizes
// and consumes amount, and writes the counter back. The caller must already
// hold the account's row lock and must roll back its unit of work on error.
func (t *Tracker) Reserve(ctx context.Context, table storage.ILimitWriter, accountID uuid.UUID, kind Kind, amount decimal.Decimal, now time.Time) error {
	row, err := table.FindOrCreateForUpdate(ctx, t.initial(accountID, now))
	if err != nil {
		return err
	}
	counter := NewCounter(row, t.location)
	if err := counter.Reserve(kind, amount, now); err != nil {
		return err
	}
	return table.Update(ctx, counter.Row())
}

// Snapshot reports the counter as an authorization at now would see it. Resets
// are applied to the returned copy only. Accounts without a counter report the
// defaults with nothing used.
func (t *Tracker) Snapshot(ctx context.Context, table storage.ILimitTable, accountID uuid.UUID, now time.Time) (*Snapshot, error) {
	row, err := table.FindByAccountID(ctx, accountID)
	if errors.Is(err, storage.ErrNotFound) {
		row = t.initial(accountID, now)
	} else if err != nil {
		return nil, err
	}
	counter := NewCounter(row, t.location)
	counter.CheckAndResetDaily(now)
	counter.CheckAndResetMonthly(now)
	return snapshotOf(counter.Row()), nil
}

// SetCeilings replaces the account's four ceilings, keeping its running totals.
func (t *Tracker) SetCeilings(ctx context.Context, table storage.ILimitWriter, accountID uuid.UUID, ceilings Ceilings, now time.Time) (*Snapshot, error) {
	if err := ceilings.Validate(); err != nil {
		return nil, err
	}
	row, err := table.FindOrCreateForUpdate(ctx, t.initial(accountID, now))
	if err != nil {
		return nil, err
	}
	counter := NewCounter(row, t.location)
	counter.CheckAndResetDaily(now)
	counter.CheckAndResetMonthly(now)

	row.DailyWithdrawalLimit = ceilings.DailyWithdrawal
	row.MonthlyWithdrawalLimit = ceilings.MonthlyWithdrawal
	row.DailyTransferLimit = ceilings.DailyTransfer
	row.MonthlyTransferLimit = ceilings.MonthlyTransfer
	if err := table.Update(ctx, row); err != nil {
		return nil, err
	}
	return snapshotOf(row), nil
}

func snapshotOf(row *storage.Limit) *Snapshot {
	return &Snapshot{
		AccountID: row.AccountID,
		Withdrawal: Usage{
			DailyLimit:       row.DailyWithdrawalLimit,
			DailyUsed:        row.DailyWithdrawalUsed,
			DailyRemaining:   headroom(row.DailyWithdrawalLimit, row.DailyWithdrawalUsed),
			MonthlyLimit:     row.MonthlyWithdrawalLimit,
			MonthlyUsed:      row.MonthlyWithdrawalUsed,
			MonthlyRemaining: headroom(row.MonthlyWithdrawalLimit, row.MonthlyWithdrawalUsed),
		},
		Transfer: Usage{
			DailyLimit:       row.DailyTransferLimit,
			DailyUsed:        row.DailyTransferUsed,
			DailyRemaining:   headroom(row.DailyTransferLimit, row.DailyTransferUsed),
			MonthlyLimit:     row.MonthlyTransferLimit,
			MonthlyUsed:      row.MonthlyTransferUsed,
			MonthlyRemaining: headroom(row.MonthlyTransferLimit, row.MonthlyTransferUsed),
		},
		LastDailyReset:   row.LastDailyReset,
		LastMonthlyReset: row.LastMonthlyReset,
	}
}
