package storage

import (
	"context"
)

// Tx is the commit handle of a unit of work. bob.Tx satisfies it.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Writer groups every table bound to one unit of work. Nothing written
// through it is visible to other callers until Commit succeeds.
type Writer struct {
	tx           Tx
	Accounts     IAccountWriter
	Limits       ILimitWriter
	Transactions ITransactionWriter
	Transfers    ITransferWriter
}

func NewWriter(tx Tx, accounts IAccountWriter, limits ILimitWriter, transactions ITransactionWriter, transfers ITransferWriter) *Writer {
	return &Writer{
		tx:           tx,
		Accounts:     accounts,
		Limits:       limits,
		Transactions: transactions,
		Transfers:    transfers,
	}
}

func (w *Writer) Commit(ctx context.Context) error {
	return w.tx.Commit(ctx)
}

func (w *Writer) Rollback(ctx context.Context) error {
	return w.tx.Rollback(ctx)
}
