package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/bank-server/internal/id"
	"github.com/carson-networks/bank-server/internal/ledger"
	"github.com/carson-networks/bank-server/internal/limits"
	"github.com/carson-networks/bank-server/internal/metrics"
	"github.com/carson-networks/bank-server/internal/operator"
	"github.com/carson-networks/bank-server/internal/operator/actions"
	"github.com/carson-networks/bank-server/internal/storage"
	"github.com/carson-networks/bank-server/internal/storage/memstore"
)

var testCeilings = limits.Ceilings{
	DailyWithdrawal:   decimal.NewFromInt(50000),
	MonthlyWithdrawal: decimal.NewFromInt(500000),
	DailyTransfer:     decimal.NewFromInt(100000),
	MonthlyTransfer:   decimal.NewFromInt(1000000),
}

var testPolicy = AmountPolicy{Min: decimal.NewFromInt(1), Max: decimal.NewFromInt(1000000)}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	store   *memstore.Store
	svc     *Service
	clock   *fakeClock
	metrics *metrics.Metrics
}

// newHarness wires the services against an in-memory store. wrap, when
// given, decorates the storage seen by the operator.
func newHarness(t *testing.T, wrap func(storage.Storage) storage.Storage) *harness {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)}
	store := memstore.New(memstore.WithClock(clock.Now))

	var operated storage.Storage = store
	if wrap != nil {
		operated = wrap(store)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	delegator := operator.NewOperatorDelegator(operated, 4, logger)
	delegator.Start()
	t.Cleanup(delegator.Stop)

	ids := id.NewGenerator()
	deps := &actions.Dependencies{
		Limits: limits.NewTracker(testCeilings, time.UTC),
		Ledger: ledger.NewWriter(ids, clock.Now),
		IDs:    ids,
		Now:    clock.Now,
	}
	m := metrics.New(prometheus.NewRegistry())

	return &harness{
		store:   store,
		svc:     NewService(store, delegator, deps, testPolicy, m),
		clock:   clock,
		metrics: m,
	}
}

func (h *harness) open(t *testing.T, name string, balance int64) *Account {
	t.Helper()
	account, err := h.svc.Account.OpenAccount(context.Background(), name, decimal.NewFromInt(balance))
	require.NoError(t, err)
	h.clock.Advance(time.Second)
	return account
}

func (h *harness) balance(t *testing.T, accountID uuid.UUID) decimal.Decimal {
	t.Helper()
	account, err := h.svc.Account.GetAccount(context.Background(), accountID)
	require.NoError(t, err)
	return account.Balance
}

// seedLimit stores a counter with the given daily withdrawal usage, stamped
// with the current clock.
func (h *harness) seedLimit(t *testing.T, accountID uuid.UUID, dailyWithdrawalUsed int64) {
	t.Helper()
	ctx := context.Background()
	w, err := h.store.Write(ctx)
	require.NoError(t, err)
	now := h.clock.Now()
	used := decimal.NewFromInt(dailyWithdrawalUsed)
	_, err = w.Limits.FindOrCreateForUpdate(ctx, &storage.Limit{
		AccountID:              accountID,
		DailyWithdrawalLimit:   testCeilings.DailyWithdrawal,
		MonthlyWithdrawalLimit: testCeilings.MonthlyWithdrawal,
		DailyTransferLimit:     testCeilings.DailyTransfer,
		MonthlyTransferLimit:   testCeilings.MonthlyTransfer,
		DailyWithdrawalUsed:    used,
		MonthlyWithdrawalUsed:  used,
		DailyTransferUsed:      decimal.Zero,
		MonthlyTransferUsed:    decimal.Zero,
		LastDailyReset:         now,
		LastMonthlyReset:       now,
	})
	require.NoError(t, err)
	require.NoError(t, w.Commit(ctx))
}

func (h *harness) ledger(t *testing.T, accountID uuid.UUID) []*storage.Transaction {
	t.Helper()
	rows, err := h.store.Read().Transactions.List(context.Background(), &storage.TransactionFilter{
		AccountID: &accountID,
		Limit:     1000,
	})
	require.NoError(t, err)
	return rows
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}
