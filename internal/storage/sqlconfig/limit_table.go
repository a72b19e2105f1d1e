package sqlconfig

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/bank-server/internal/storage"
)

var limitColumns = []string{
	"account_id",
	"daily_withdrawal_limit", "monthly_withdrawal_limit", "daily_transfer_limit", "monthly_transfer_limit",
	"daily_withdrawal_used", "monthly_withdrawal_used", "daily_transfer_used", "monthly_transfer_used",
	"last_daily_reset", "last_monthly_reset",
}

var _ storage.ILimitWriter = (*LimitsTable)(nil)

// LimitsTable provides access to the account_limits table.
type LimitsTable struct {
	exec bob.Executor
}

func (t *LimitsTable) selectLimit(accountID uuid.UUID, mods ...bob.Mod[*dialect.SelectQuery]) bob.BaseQuery[*dialect.SelectQuery] {
	base := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns(limitColumns)...),
		sm.From("account_limits"),
		sm.Where(psql.Quote("account_id").EQ(psql.Arg(accountID))),
	}
	return psql.Select(append(base, mods...)...)
}

func (t *LimitsTable) FindByAccountID(ctx context.Context, accountID uuid.UUID) (*storage.Limit, error) {
	row, err := bob.One(ctx, t.exec, t.selectLimit(accountID), scan.StructMapper[*storage.Limit]())
	if err != nil {
		return nil, mapError(err)
	}
	return row, nil
}

// FindOrCreateForUpdate inserts initial unless a row exists, then selects the
// row FOR UPDATE. Concurrent creators race on the primary key and the loser's
// insert does nothing.
func (t *LimitsTable) FindOrCreateForUpdate(ctx context.Context, initial *storage.Limit) (*storage.Limit, error) {
	insert := psql.Insert(
		im.Into("account_limits", limitColumns...),
		im.Values(args(
			initial.AccountID,
			initial.DailyWithdrawalLimit,
			initial.MonthlyWithdrawalLimit,
			initial.DailyTransferLimit,
			initial.MonthlyTransferLimit,
			initial.DailyWithdrawalUsed,
			initial.MonthlyWithdrawalUsed,
			initial.DailyTransferUsed,
			initial.MonthlyTransferUsed,
			initial.LastDailyReset,
			initial.LastMonthlyReset,
		)...),
		im.OnConflict("account_id").DoNothing(),
	)
	if _, err := bob.Exec(ctx, t.exec, insert); err != nil {
		return nil, mapError(err)
	}

	row, err := bob.One(ctx, t.exec, t.selectLimit(initial.AccountID, sm.ForUpdate()), scan.StructMapper[*storage.Limit]())
	if err != nil {
		return nil, mapError(err)
	}
	return row, nil
}

// Update writes every ceiling, total and reset stamp of the row.
func (t *LimitsTable) Update(ctx context.Context, limit *storage.Limit) error {
	q := psql.Update(
		um.Table("account_limits"),
		um.SetCol("daily_withdrawal_limit").ToArg(limit.DailyWithdrawalLimit),
		um.SetCol("monthly_withdrawal_limit").ToArg(limit.MonthlyWithdrawalLimit),
		um.SetCol("daily_transfer_limit").ToArg(limit.DailyTransferLimit),
		um.SetCol("monthly_transfer_limit").ToArg(limit.MonthlyTransferLimit),
		um.SetCol("daily_withdrawal_used").ToArg(limit.DailyWithdrawalUsed),
		um.SetCol("monthly_withdrawal_used").ToArg(limit.MonthlyWithdrawalUsed),
		um.SetCol("daily_transfer_used").ToArg(limit.DailyTransferUsed),
		um.SetCol("monthly_transfer_used").ToArg(limit.MonthlyTransferUsed),
		um.SetCol("last_daily_reset").ToArg(limit.LastDailyReset),
		um.SetCol("last_monthly_reset").ToArg(limit.LastMonthlyReset),
		um.Where(psql.Quote("account_id").EQ(psql.Arg(limit.AccountID))),
	)
	res, err := bob.Exec(ctx, t.exec, q)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
