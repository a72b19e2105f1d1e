// Package limits enforces per-account daily and monthly ceilings on
// withdrawals and transfers. Windows follow the calendar of a configured
// location, not elapsed time.
package limits

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/bank-server/internal/domain"
	"github.com/carson-networks/bank-server/internal/storage"
)

type Kind string

const (
	KindWithdrawal Kind = "withdrawal"
	KindTransfer   Kind = "transfer"
)

type Window string

const (
	WindowDaily   Window = "daily"
	WindowMonthly Window = "monthly"
)

// Decision is the outcome of Authorize. Window and Remaining describe the
// first ceiling that rejected the amount.
type Decision struct {
	Allowed   bool
	Window    Window
	Remaining decimal.Decimal
	Message   string
}

// Err returns nil for an allowed decision and a LimitExceeded error otherwise.
func (d Decision) Err(kind Kind) error {
	if d.Allowed {
		return nil
	}
	return domain.LimitExceeded(string(kind), string(d.Window), d.Remaining)
}

// Counter is the limit state machine for one account. It mutates the wrapped
// row in memory; persisting it is the caller's job.
type Counter struct {
	row *storage.Limit
	loc *time.Location
}

func NewCounter(row *storage.Limit, loc *time.Location) *Counter {
	if loc == nil {
		loc = time.Local
	}
	return &Counter{row: row, loc: loc}
}

func (c *Counter) Row() *storage.Limit {
	return c.row
}

// CheckAndResetDaily zeroes both daily totals when now falls on a different
// calendar day than the last daily reset. It reports whether it reset.
func (c *Counter) CheckAndResetDaily(now time.Time) bool {
	if sameDay(c.row.LastDailyReset.In(c.loc), now.In(c.loc)) {
		return false
	}
	c.row.DailyWithdrawalUsed = decimal.Zero
	c.row.DailyTransferUsed = decimal.Zero
	c.row.LastDailyReset = now
	return true
}

// CheckAndResetMonthly is CheckAndResetDaily at month and year granularity.
func (c *Counter) CheckAndResetMonthly(now time.Time) bool {
	if sameMonth(c.row.LastMonthlyReset.In(c.loc), now.In(c.loc)) {
		return false
	}
	c.row.MonthlyWithdrawalUsed = decimal.Zero
	c.row.MonthlyTransferUsed = decimal.Zero
	c.row.LastMonthlyReset = now
	return true
}

// Authorize runs both resets and checks amount against the daily ceiling,
// then the monthly one.
func (c *Counter) Authorize(kind Kind, amount decimal.Decimal, now time.Time) Decision {
	c.CheckAndResetDaily(now)
	c.CheckAndResetMonthly(now)

	dailyLimit, dailyUsed := c.daily(kind)
	if dailyUsed.Add(amount).GreaterThan(dailyLimit) {
		return rejected(kind, WindowDaily, dailyLimit, dailyUsed)
	}
	monthlyLimit, monthlyUsed := c.monthly(kind)
	if monthlyUsed.Add(amount).GreaterThan(monthlyLimit) {
		return rejected(kind, WindowMonthly, monthlyLimit, monthlyUsed)
	}
	return Decision{Allowed: true}
}

// Consume adds amount to both totals of kind. Only call it after Authorize
// allowed the same amount.
func (c *Counter) Consume(kind Kind, amount decimal.Decimal) {
	switch kind {
	case KindWithdrawal:
		c.row.DailyWithdrawalUsed = c.row.DailyWithdrawalUsed.Add(amount)
		c.row.MonthlyWithdrawalUsed = c.row.MonthlyWithdrawalUsed.Add(amount)
	case KindTransfer:
		c.row.DailyTransferUsed = c.row.DailyTransferUsed.Add(amount)
		c.row.MonthlyTransferUsed = c.row.MonthlyTransferUsed.Add(amount)
	}
}

// Reserve authorizes and consumes in one step. On rejection the totals are
// left untouched.
func (c *Counter) Reserve(kind Kind, amount decimal.Decimal, now time.Time) error {
	d := c.Authorize(kind, amount, now)
	if !d.Allowed {
		return d.Err(kind)
	}
	c.Consume(kind, amount)
	return nil
}

func (c *Counter) daily(kind Kind) (limit, used decimal.Decimal) {
	if kind == KindTransfer {
		return c.row.DailyTransferLimit, c.row.DailyTransferUsed
	}
	return c.row.DailyWithdrawalLimit, c.row.DailyWithdrawalUsed
}

func (c *Counter) monthly(kind Kind) (limit, used decimal.Decimal) {
	if kind == KindTransfer {
		return c.row.MonthlyTransferLimit, c.row.MonthlyTransferUsed
	}
	return c.row.MonthlyWithdrawalLimit, c.row.MonthlyWithdrawalUsed
}

func rejected(kind Kind, window Window, limit, used decimal.Decimal) Decision {
	remaining := headroom(limit, used)
	return Decision{
		Window:    window,
		Remaining: remaining,
		Message:   domain.LimitExceeded(string(kind), string(window), remaining).Message,
	}
}

func headroom(limit, used decimal.Decimal) decimal.Decimal {
	r := limit.Sub(used)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
