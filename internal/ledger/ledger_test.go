package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/bank-server/internal/domain"
	"github.com/carson-networks/bank-server/internal/id"
	"github.com/carson-networks/bank-server/internal/storage"
	"github.com/carson-networks/bank-server/internal/storage/memstore"
)

var fixedNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func newWriter() *Writer {
	return NewWriter(id.NewGenerator(), func() time.Time { return fixedNow })
}

func TestAppendTransaction_AssignsIDAndTime(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	w, err := store.Write(ctx)
	require.NoError(t, err)

	record := &storage.Transaction{
		AccountID:        uuid.Must(uuid.NewV4()),
		Kind:             domain.TransactionKindDeposit,
		Amount:           decimal.NewFromInt(250),
		ResultingBalance: decimal.NewFromInt(250),
		Status:           domain.TransactionStatusCompleted,
	}
	txID, err := newWriter().AppendTransaction(ctx, w.Transactions, record)
	require.NoError(t, err)
	require.NoError(t, w.Commit(ctx))

	assert.True(t, strings.HasPrefix(txID, id.TransactionPrefix))
	assert.Equal(t, txID, record.ID)
	assert.Equal(t, fixedNow, record.CreatedAt)

	stored, err := store.Read().Transactions.FindByID(ctx, txID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(250).Equal(stored.Amount))
}

func TestAppendTransaction_KeepsPresetFields(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	w, err := store.Write(ctx)
	require.NoError(t, err)
	defer func() { _ = w.Rollback(ctx) }()

	at := fixedNow.Add(-time.Hour)
	txID, err := newWriter().AppendTransaction(ctx, w.Transactions, &storage.Transaction{ID: "TXNPRESET", CreatedAt: at})
	require.NoError(t, err)
	assert.Equal(t, "TXNPRESET", txID)

	stored, err := w.Transactions.FindByID(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, at, stored.CreatedAt)
}

func TestAppendTransfer_CompletedGetsCompletionTime(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	w, err := store.Write(ctx)
	require.NoError(t, err)

	record := &storage.Transfer{
		TransactionID: "TXN1",
		Amount:        decimal.NewFromInt(10),
		Status:        domain.TransferStatusCompleted,
	}
	trfID, err := newWriter().AppendTransfer(ctx, w.Transfers, record)
	require.NoError(t, err)
	require.NoError(t, w.Commit(ctx))

	assert.True(t, strings.HasPrefix(trfID, id.TransferPrefix))
	require.NotNil(t, record.CompletedAt)
	assert.Equal(t, fixedNow, *record.CompletedAt)
}

type failingTransactions struct {
	storage.ITransactionWriter
}

func (failingTransactions) Insert(context.Context, *storage.Transaction) (string, error) {
	return "", errors.New("disk full")
}

func TestAppendTransaction_PropagatesStorageError(t *testing.T) {
	_, err := newWriter().AppendTransaction(context.Background(), failingTransactions{}, &storage.Transaction{})
	assert.EqualError(t, err, "disk full")
}
