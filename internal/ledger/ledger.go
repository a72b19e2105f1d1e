// Package ledger appends transaction and transfer records. It holds no
// business rules: callers hand it fully formed records inside a unit of work.
package ledger

import (
	"context"
	"time"

	"github.com/carson-networks/bank-server/internal/domain"
	"github.com/carson-networks/bank-server/internal/id"
	"github.com/carson-networks/bank-server/internal/storage"
)

type Writer struct {
	ids *id.Generator
	now func() time.Time
}

func NewWriter(ids *id.Generator, now func() time.Time) *Writer {
	if now == nil {
		now = time.Now
	}
	return &Writer{ids: ids, now: now}
}

// AppendTransaction persists record through table, filling the id and
// creation time when unset, and returns the stored id.
func (w *Writer) AppendTransaction(ctx context.Context, table storage.ITransactionWriter, record *storage.Transaction) (string, error) {
	if record.ID == "" {
		txID, err := w.ids.Next(id.TransactionPrefix)
		if err != nil {
			return "", err
		}
		record.ID = txID
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = w.now()
	}
	return table.Insert(ctx, record)
}

// AppendTransfer is AppendTransaction for transfer records. Completed
// transfers without a completion time get the creation time.
func (w *Writer) AppendTransfer(ctx context.Context, table storage.ITransferWriter, record *storage.Transfer) (string, error) {
	if record.ID == "" {
		trfID, err := w.ids.Next(id.TransferPrefix)
		if err != nil {
			return "", err
		}
		record.ID = trfID
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = w.now()
	}
	if record.CompletedAt == nil && record.Status == domain.TransferStatusCompleted {
		at := record.CreatedAt
		record.CompletedAt = &at
	}
	return table.Insert(ctx, record)
}
