package operator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/bank-server/internal/domain"
	"github.com/carson-networks/bank-server/internal/storage"
	"github.com/carson-networks/bank-server/internal/storage/memstore"
)

const (
	timeout = 2 * time.Second
	tick    = 5 * time.Millisecond
)

type funcAction func(ctx context.Context, writer *storage.Writer) error

func (f funcAction) Perform(ctx context.Context, writer *storage.Writer) error {
	return f(ctx, writer)
}

func newDelegator(t *testing.T, s storage.Storage) *OperatorDelegator {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	d := NewOperatorDelegator(s, 2, logger)
	d.Start()
	t.Cleanup(d.Stop)
	return d
}

func seedAccount(t *testing.T, s *memstore.Store) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	w, err := s.Write(ctx)
	require.NoError(t, err)
	id, err := w.Accounts.Insert(ctx, &storage.AccountCreate{
		AccountNumber: "1000000001",
		CardNumber:    "4000000000000001",
		Name:          "Ada",
		Balance:       decimal.NewFromInt(100),
		Status:        domain.AccountStatusActive,
		CardStatus:    domain.CardStatusActive,
	})
	require.NoError(t, err)
	require.NoError(t, w.Commit(ctx))
	return id
}

func setBalance(id uuid.UUID, v int64) funcAction {
	return func(ctx context.Context, w *storage.Writer) error {
		if _, err := w.Accounts.FindByIDsForUpdate(ctx, id); err != nil {
			return err
		}
		return w.Accounts.UpdateBalance(ctx, id, decimal.NewFromInt(v))
	}
}

func balance(t *testing.T, s storage.Storage, id uuid.UUID) decimal.Decimal {
	t.Helper()
	a, err := s.Read().Accounts.FindByID(context.Background(), id)
	require.NoError(t, err)
	return a.Balance
}

func TestProcess_Commits(t *testing.T) {
	s := memstore.New()
	id := seedAccount(t, s)
	d := newDelegator(t, s)

	require.NoError(t, d.Process(context.Background(), setBalance(id, 42)))
	assert.True(t, decimal.NewFromInt(42).Equal(balance(t, s, id)))
}

func TestProcess_DomainErrorRollsBack(t *testing.T) {
	s := memstore.New()
	id := seedAccount(t, s)
	d := newDelegator(t, s)

	err := d.Process(context.Background(), funcAction(func(ctx context.Context, w *storage.Writer) error {
		if err := setBalance(id, 0)(ctx, w); err != nil {
			return err
		}
		return domain.ErrInsufficientFunds
	}))
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.True(t, decimal.NewFromInt(100).Equal(balance(t, s, id)))
}

func TestProcess_UntypedErrorBecomesStorageFailure(t *testing.T) {
	s := memstore.New()
	id := seedAccount(t, s)
	d := newDelegator(t, s)

	cause := errors.New("pq: connection reset by peer")
	err := d.Process(context.Background(), funcAction(func(ctx context.Context, w *storage.Writer) error {
		if err := setBalance(id, 0)(ctx, w); err != nil {
			return err
		}
		return cause
	}))
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, domain.AsError(err).Message, "pq")
	assert.True(t, decimal.NewFromInt(100).Equal(balance(t, s, id)))
}

func TestProcess_PanicRollsBack(t *testing.T) {
	s := memstore.New()
	id := seedAccount(t, s)
	d := newDelegator(t, s)

	err := d.Process(context.Background(), funcAction(func(ctx context.Context, w *storage.Writer) error {
		if err := setBalance(id, 0)(ctx, w); err != nil {
			return err
		}
		panic("boom")
	}))
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.True(t, decimal.NewFromInt(100).Equal(balance(t, s, id)))

	// The worker survives and keeps serving.
	require.NoError(t, d.Process(context.Background(), setBalance(id, 7)))
}

type failingCommit struct {
	*memstore.Store
}

// failingTx discards the unit of work and reports a failed commit.
type failingTx struct {
	inner *storage.Writer
}

func (f failingTx) Commit(ctx context.Context) error {
	_ = f.inner.Rollback(ctx)
	return errors.New("commit lost")
}

func (f failingTx) Rollback(ctx context.Context) error {
	return f.inner.Rollback(ctx)
}

func (f failingCommit) Write(ctx context.Context) (*storage.Writer, error) {
	w, err := f.Store.Write(ctx)
	if err != nil {
		return nil, err
	}
	return storage.NewWriter(failingTx{inner: w}, w.Accounts, w.Limits, w.Transactions, w.Transfers), nil
}

func TestProcess_CommitFailure(t *testing.T) {
	s := memstore.New()
	id := seedAccount(t, s)
	d := newDelegator(t, failingCommit{s})

	err := d.Process(context.Background(), funcAction(func(ctx context.Context, w *storage.Writer) error {
		return w.Accounts.UpdateBalance(ctx, id, decimal.Zero)
	}))
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.True(t, decimal.NewFromInt(100).Equal(balance(t, s, id)))
}

func TestProcess_AfterStop(t *testing.T) {
	s := memstore.New()
	d := NewOperatorDelegator(s, 1, nil)
	d.Start()
	d.Stop()

	var ran atomic.Bool
	err := d.Process(context.Background(), funcAction(func(context.Context, *storage.Writer) error {
		ran.Store(true)
		return nil
	}))
	assert.ErrorIs(t, err, ErrOperatorStopped)
	assert.False(t, ran.Load())
}

func TestStop_DrainsQueuedItems(t *testing.T) {
	s := memstore.New()
	d := NewOperatorDelegator(s, 1, nil)

	var done atomic.Int32
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			results <- d.Process(context.Background(), funcAction(func(context.Context, *storage.Writer) error {
				done.Add(1)
				return nil
			}))
		}()
	}
	// Items queue up before any worker exists.
	require.Eventually(t, func() bool { return len(d.queue) == 10 }, timeout, tick)

	d.Start()
	d.Stop()
	for i := 0; i < 10; i++ {
		assert.NoError(t, <-results)
	}
	assert.Equal(t, int32(10), done.Load())
}
