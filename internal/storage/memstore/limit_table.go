package memstore

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/bank-server/internal/storage"
)

var _ storage.ILimitWriter = (*limitTable)(nil)

type limitTable struct {
	store *Store
	uow   *unitOfWork
}

func (t *limitTable) FindByAccountID(_ context.Context, accountID uuid.UUID) (*storage.Limit, error) {
	if t.uow != nil {
		t.uow.mu.Lock()
		l, ok := t.uow.limits[accountID]
		t.uow.mu.Unlock()
		if ok {
			return copyLimit(l), nil
		}
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	l, ok := t.store.limits[accountID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyLimit(l), nil
}

// FindOrCreateForUpdate takes the owning account's row lock, so counters of one
// account are never read and written by two units of work at once.
func (t *limitTable) FindOrCreateForUpdate(ctx context.Context, initial *storage.Limit) (*storage.Limit, error) {
	if err := t.uow.active(); err != nil {
		return nil, err
	}
	if err := t.uow.lock(ctx, []uuid.UUID{initial.AccountID}); err != nil {
		return nil, err
	}
	l, err := t.FindByAccountID(ctx, initial.AccountID)
	if err == nil {
		return l, nil
	}
	if err != storage.ErrNotFound {
		return nil, err
	}

	created := copyLimit(initial)
	t.uow.mu.Lock()
	t.uow.limits[created.AccountID] = created
	t.uow.mu.Unlock()
	return copyLimit(created), nil
}

func (t *limitTable) Update(ctx context.Context, limit *storage.Limit) error {
	if err := t.uow.active(); err != nil {
		return err
	}
	if err := t.uow.lock(ctx, []uuid.UUID{limit.AccountID}); err != nil {
		return err
	}
	if _, err := t.FindByAccountID(ctx, limit.AccountID); err != nil {
		return err
	}
	t.uow.mu.Lock()
	t.uow.limits[limit.AccountID] = copyLimit(limit)
	t.uow.mu.Unlock()
	return nil
}
