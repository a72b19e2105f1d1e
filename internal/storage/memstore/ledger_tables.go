package memstore

import (
	"context"
	"sort"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/bank-server/internal/domain"
	"github.com/carson-networks/bank-server/internal/storage"
)

var (
	_ storage.ITransactionWriter = (*transactionTable)(nil)
	_ storage.ITransferWriter    = (*transferTable)(nil)
)

type transactionTable struct {
	store *Store
	uow   *unitOfWork
}

func (t *transactionTable) FindByID(_ context.Context, id string) (*storage.Transaction, error) {
	if t.uow != nil {
		t.uow.mu.Lock()
		for _, tx := range t.uow.transactions {
			if tx.ID == id {
				t.uow.mu.Unlock()
				return copyTransaction(tx), nil
			}
		}
		t.uow.mu.Unlock()
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	tx, ok := t.store.transactions[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyTransaction(tx), nil
}

func (t *transactionTable) FindByIdempotencyKey(ctx context.Context, accountID uuid.UUID, key string) (*storage.Transaction, error) {
	if key == "" {
		return nil, storage.ErrNotFound
	}
	if t.uow != nil {
		t.uow.mu.Lock()
		for _, tx := range t.uow.transactions {
			if tx.AccountID == accountID && tx.IdempotencyKey == key {
				t.uow.mu.Unlock()
				return copyTransaction(tx), nil
			}
		}
		t.uow.mu.Unlock()
	}
	t.store.mu.RLock()
	id, ok := t.store.idempotency[idempotencyKey{accountID, key}]
	t.store.mu.RUnlock()
	if !ok {
		return nil, storage.ErrNotFound
	}
	return t.FindByID(ctx, id)
}

// List returns committed transactions newest first.
func (t *transactionTable) List(_ context.Context, filter *storage.TransactionFilter) ([]*storage.Transaction, error) {
	t.store.mu.RLock()
	rows := make([]*storage.Transaction, 0)
	for _, tx := range t.store.transactions {
		if filter != nil {
			if filter.AccountID != nil && tx.AccountID != *filter.AccountID {
				continue
			}
			if filter.MaxCreationTime != nil && tx.CreatedAt.After(*filter.MaxCreationTime) {
				continue
			}
		}
		rows = append(rows, copyTransaction(tx))
	}
	t.store.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].ID > rows[j].ID
	})
	if filter == nil {
		return rows, nil
	}
	return page(rows, filter.Offset, filter.Limit), nil
}

func (t *transactionTable) Insert(_ context.Context, transaction *storage.Transaction) (string, error) {
	if err := t.uow.active(); err != nil {
		return "", err
	}
	row := copyTransaction(transaction)

	t.store.mu.RLock()
	_, idTaken := t.store.transactions[row.ID]
	_, keyTaken := t.store.idempotency[idempotencyKey{row.AccountID, row.IdempotencyKey}]
	t.store.mu.RUnlock()
	if idTaken || (row.IdempotencyKey != "" && keyTaken) {
		return "", storage.ErrDuplicate
	}

	t.uow.mu.Lock()
	defer t.uow.mu.Unlock()
	for _, tx := range t.uow.transactions {
		if tx.ID == row.ID {
			return "", storage.ErrDuplicate
		}
		if row.IdempotencyKey != "" && tx.AccountID == row.AccountID && tx.IdempotencyKey == row.IdempotencyKey {
			return "", storage.ErrDuplicate
		}
	}
	t.uow.transactions = append(t.uow.transactions, row)
	return row.ID, nil
}

type transferTable struct {
	store *Store
	uow   *unitOfWork
}

func (t *transferTable) FindByID(_ context.Context, id string) (*storage.Transfer, error) {
	if t.uow != nil {
		t.uow.mu.Lock()
		for _, tr := range t.uow.transfers {
			if tr.ID == id {
				t.uow.mu.Unlock()
				return copyTransfer(tr), nil
			}
		}
		t.uow.mu.Unlock()
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	tr, ok := t.store.transfers[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyTransfer(tr), nil
}

func (t *transferTable) FindByTransactionID(_ context.Context, transactionID string) (*storage.Transfer, error) {
	if t.uow != nil {
		t.uow.mu.Lock()
		for _, tr := range t.uow.transfers {
			if tr.TransactionID == transactionID {
				t.uow.mu.Unlock()
				return copyTransfer(tr), nil
			}
		}
		t.uow.mu.Unlock()
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	for _, tr := range t.store.transfers {
		if tr.TransactionID == transactionID {
			return copyTransfer(tr), nil
		}
	}
	return nil, storage.ErrNotFound
}

// List returns committed transfers newest first from one party's perspective.
func (t *transferTable) List(_ context.Context, filter *storage.TransferFilter) ([]*storage.Transfer, error) {
	t.store.mu.RLock()
	rows := make([]*storage.Transfer, 0)
	for _, tr := range t.store.transfers {
		if filter != nil && !matchesDirection(tr, filter.AccountID, filter.Direction) {
			continue
		}
		rows = append(rows, copyTransfer(tr))
	}
	t.store.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].ID > rows[j].ID
	})
	if filter == nil {
		return rows, nil
	}
	return page(rows, filter.Offset, filter.Limit), nil
}

func matchesDirection(tr *storage.Transfer, accountID uuid.UUID, direction domain.TransferDirection) bool {
	switch direction {
	case domain.TransferDirectionSent:
		return tr.SenderID == accountID
	case domain.TransferDirectionReceived:
		return tr.RecipientID == accountID
	default:
		return tr.SenderID == accountID || tr.RecipientID == accountID
	}
}

func (t *transferTable) Insert(_ context.Context, transfer *storage.Transfer) (string, error) {
	if err := t.uow.active(); err != nil {
		return "", err
	}
	row := copyTransfer(transfer)

	t.store.mu.RLock()
	_, taken := t.store.transfers[row.ID]
	t.store.mu.RUnlock()
	if taken {
		return "", storage.ErrDuplicate
	}

	t.uow.mu.Lock()
	defer t.uow.mu.Unlock()
	for _, tr := range t.uow.transfers {
		if tr.ID == row.ID {
			return "", storage.ErrDuplicate
		}
	}
	t.uow.transfers = append(t.uow.transfers, row)
	return row.ID, nil
}
