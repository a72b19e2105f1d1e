package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/bank-server/internal/domain"
	"github.com/carson-networks/bank-server/internal/storage"
)

func openAccount(t *testing.T, s *Store, number string, balance int64) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	w, err := s.Write(ctx)
	require.NoError(t, err)
	id, err := w.Accounts.Insert(ctx, &storage.AccountCreate{
		AccountNumber: number,
		CardNumber:    "4" + number,
		Name:          "Holder " + number,
		Balance:       decimal.NewFromInt(balance),
		Status:        domain.AccountStatusActive,
		CardStatus:    domain.CardStatusActive,
	})
	require.NoError(t, err)
	require.NoError(t, w.Commit(ctx))
	return id
}

func TestStore_StagedWritesInvisibleUntilCommit(t *testing.T) {
	ctx := context.Background()
	s := New()
	id := openAccount(t, s, "1001", 100)

	w, err := s.Write(ctx)
	require.NoError(t, err)
	_, err = w.Accounts.FindByIDsForUpdate(ctx, id)
	require.NoError(t, err)
	require.NoError(t, w.Accounts.UpdateBalance(ctx, id, decimal.NewFromInt(40)))

	inTx, err := w.Accounts.FindByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(40).Equal(inTx.Balance))

	committed, err := s.Read().Accounts.FindByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(committed.Balance))

	require.NoError(t, w.Commit(ctx))
	committed, err = s.Read().Accounts.FindByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(40).Equal(committed.Balance))
}

func TestStore_RollbackDiscardsEverything(t *testing.T) {
	ctx := context.Background()
	s := New()
	id := openAccount(t, s, "1001", 100)

	w, err := s.Write(ctx)
	require.NoError(t, err)
	_, err = w.Accounts.FindByIDsForUpdate(ctx, id)
	require.NoError(t, err)
	require.NoError(t, w.Accounts.UpdateBalance(ctx, id, decimal.Zero))
	_, err = w.Transactions.Insert(ctx, &storage.Transaction{ID: "TXN1", AccountID: id, CreatedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, w.Rollback(ctx))

	a, err := s.Read().Accounts.FindByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(a.Balance))
	_, err = s.Read().Transactions.FindByID(ctx, "TXN1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// A second rollback, or one after commit, is harmless.
	assert.NoError(t, w.Rollback(ctx))
}

func TestStore_NegativeBalanceRejected(t *testing.T) {
	ctx := context.Background()
	s := New()
	id := openAccount(t, s, "1001", 100)

	w, err := s.Write(ctx)
	require.NoError(t, err)
	defer func() { _ = w.Rollback(ctx) }()
	err = w.Accounts.UpdateBalance(ctx, id, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, storage.ErrConstraint)
}

func TestStore_RowLockBlocksSecondWriter(t *testing.T) {
	ctx := context.Background()
	s := New()
	id := openAccount(t, s, "1001", 100)

	first, err := s.Write(ctx)
	require.NoError(t, err)
	_, err = first.Accounts.FindByIDsForUpdate(ctx, id)
	require.NoError(t, err)

	second, err := s.Write(ctx)
	require.NoError(t, err)
	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = second.Accounts.FindByIDsForUpdate(waitCtx, id)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.NoError(t, second.Rollback(ctx))

	require.NoError(t, first.Commit(ctx))

	third, err := s.Write(ctx)
	require.NoError(t, err)
	_, err = third.Accounts.FindByIDsForUpdate(ctx, id)
	assert.NoError(t, err)
	require.NoError(t, third.Rollback(ctx))
}

func TestStore_OppositeOrderLocksDoNotDeadlock(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s := New()
	a := openAccount(t, s, "1001", 100)
	b := openAccount(t, s, "1002", 100)

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids := []uuid.UUID{a, b}
			if i%2 == 1 {
				ids = []uuid.UUID{b, a}
			}
			w, err := s.Write(ctx)
			if !assert.NoError(t, err) {
				return
			}
			rows, err := w.Accounts.FindByIDsForUpdate(ctx, ids...)
			if assert.NoError(t, err) {
				assert.Len(t, rows, 2)
			}
			assert.NoError(t, w.Commit(ctx))
		}(i)
	}
	wg.Wait()
	assert.NoError(t, ctx.Err())
}

func TestStore_FindByIDsForUpdateMissingRow(t *testing.T) {
	ctx := context.Background()
	s := New()
	w, err := s.Write(ctx)
	require.NoError(t, err)
	defer func() { _ = w.Rollback(ctx) }()

	_, err = w.Accounts.FindByIDsForUpdate(ctx, uuid.Must(uuid.NewV4()))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_UniqueIdempotencyKey(t *testing.T) {
	ctx := context.Background()
	s := New()
	id := openAccount(t, s, "1001", 100)

	insert := func(txID string) error {
		w, err := s.Write(ctx)
		require.NoError(t, err)
		_, err = w.Transactions.Insert(ctx, &storage.Transaction{ID: txID, AccountID: id, IdempotencyKey: "k1", CreatedAt: time.Now()})
		if err != nil {
			_ = w.Rollback(ctx)
			return err
		}
		return w.Commit(ctx)
	}
	require.NoError(t, insert("TXN1"))
	assert.ErrorIs(t, insert("TXN2"), storage.ErrDuplicate)

	found, err := s.Read().Transactions.FindByIdempotencyKey(ctx, id, "k1")
	require.NoError(t, err)
	assert.Equal(t, "TXN1", found.ID)
}

func TestStore_DuplicateAccountNumber(t *testing.T) {
	ctx := context.Background()
	s := New()
	openAccount(t, s, "1001", 0)

	w, err := s.Write(ctx)
	require.NoError(t, err)
	defer func() { _ = w.Rollback(ctx) }()
	_, err = w.Accounts.Insert(ctx, &storage.AccountCreate{AccountNumber: "1001", CardNumber: "x"})
	assert.ErrorIs(t, err, storage.ErrDuplicate)
}

func TestStore_ListTransactionsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	id := openAccount(t, s, "1001", 0)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	w, err := s.Write(ctx)
	require.NoError(t, err)
	for i, txID := range []string{"TXNA", "TXNB", "TXNC"} {
		_, err := w.Transactions.Insert(ctx, &storage.Transaction{ID: txID, AccountID: id, CreatedAt: base.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
	}
	require.NoError(t, w.Commit(ctx))

	rows, err := s.Read().Transactions.List(ctx, &storage.TransactionFilter{AccountID: &id, Limit: 1})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "TXNC", rows[0].ID)
	assert.Equal(t, "TXNB", rows[1].ID)

	maxTime := base.Add(time.Minute)
	rows, err = s.Read().Transactions.List(ctx, &storage.TransactionFilter{AccountID: &id, MaxCreationTime: &maxTime, Offset: 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "TXNA", rows[0].ID)
}

func TestStore_ListTransfersByDirection(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := openAccount(t, s, "1001", 0)
	b := openAccount(t, s, "1002", 0)

	w, err := s.Write(ctx)
	require.NoError(t, err)
	_, err = w.Transfers.Insert(ctx, &storage.Transfer{ID: "TRF1", TransactionID: "TXN1", SenderID: a, RecipientID: b, CreatedAt: time.Now()})
	require.NoError(t, err)
	_, err = w.Transfers.Insert(ctx, &storage.Transfer{ID: "TRF2", TransactionID: "TXN2", SenderID: b, RecipientID: a, CreatedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, w.Commit(ctx))

	tests := []struct {
		direction domain.TransferDirection
		want      int
	}{
		{domain.TransferDirectionAll, 2},
		{domain.TransferDirectionSent, 1},
		{domain.TransferDirectionReceived, 1},
	}
	for _, tt := range tests {
		t.Run(string(tt.direction), func(t *testing.T) {
			rows, err := s.Read().Transfers.List(ctx, &storage.TransferFilter{AccountID: a, Direction: tt.direction})
			require.NoError(t, err)
			assert.Len(t, rows, tt.want)
		})
	}

	found, err := s.Read().Transfers.FindByTransactionID(ctx, "TXN2")
	require.NoError(t, err)
	assert.Equal(t, "TRF2", found.ID)
}

func TestStore_LimitFindOrCreate(t *testing.T) {
	ctx := context.Background()
	s := New()
	id := openAccount(t, s, "1001", 0)

	w, err := s.Write(ctx)
	require.NoError(t, err)
	l, err := w.Limits.FindOrCreateForUpdate(ctx, &storage.Limit{AccountID: id, DailyWithdrawalLimit: decimal.NewFromInt(10)})
	require.NoError(t, err)
	l.DailyWithdrawalUsed = decimal.NewFromInt(3)
	require.NoError(t, w.Limits.Update(ctx, l))
	require.NoError(t, w.Commit(ctx))

	got, err := s.Read().Limits.FindByAccountID(ctx, id)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(3).Equal(got.DailyWithdrawalUsed))

	w, err = s.Write(ctx)
	require.NoError(t, err)
	again, err := w.Limits.FindOrCreateForUpdate(ctx, &storage.Limit{AccountID: id})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(again.DailyWithdrawalLimit))
	require.NoError(t, w.Rollback(ctx))
}

func TestStore_WriteAfterClose(t *testing.T) {
	s := New()
	require.NoError(t, s.Close())
	_, err := s.Write(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}
