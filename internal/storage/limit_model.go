package storage

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// Limit is the persisted limit counter of one account.
type Limit struct {
	AccountID              uuid.UUID       `db:"account_id"`
	DailyWithdrawalLimit   decimal.Decimal `db:"daily_withdrawal_limit"`
	MonthlyWithdrawalLimit decimal.Decimal `db:"monthly_withdrawal_limit"`
	DailyTransferLimit     decimal.Decimal `db:"daily_transfer_limit"`
	MonthlyTransferLimit   decimal.Decimal `db:"monthly_transfer_limit"`
	DailyWithdrawalUsed    decimal.Decimal `db:"daily_withdrawal_used"`
	MonthlyWithdrawalUsed  decimal.Decimal `db:"monthly_withdrawal_used"`
	DailyTransferUsed      decimal.Decimal `db:"daily_transfer_used"`
	MonthlyTransferUsed    decimal.Decimal `db:"monthly_transfer_used"`
	LastDailyReset         time.Time       `db:"last_daily_reset"`
	LastMonthlyReset       time.Time       `db:"last_monthly_reset"`
}

// ILimitTable defines the read operations on limit counters.
type ILimitTable interface {
	FindByAccountID(ctx context.Context, accountID uuid.UUID) (*Limit, error)
}

// ILimitWriter mutates limit counters. Callers must already hold the owning
// account's row lock.
type ILimitWriter interface {
	ILimitTable
	// FindOrCreateForUpdate returns the locked counter for initial.AccountID,
	// inserting initial first when no counter exists yet.
	FindOrCreateForUpdate(ctx context.Context, initial *Limit) (*Limit, error)
	Update(ctx context.Context, limit *Limit) error
}
