package memstore

import (
	"context"
	"sort"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/bank-server/internal/domain"
	"github.com/carson-networks/bank-server/internal/storage"
)

var (
	_ storage.IAccountTable  = (*accountTable)(nil)
	_ storage.IAccountWriter = (*accountTable)(nil)
)

// accountTable reads through the unit of work's staged rows, when there is
// one, before falling back to committed state.
type accountTable struct {
	store *Store
	uow   *unitOfWork
}

func (t *accountTable) staged(id uuid.UUID) (*storage.Account, bool) {
	if t.uow == nil {
		return nil, false
	}
	t.uow.mu.Lock()
	defer t.uow.mu.Unlock()
	a, ok := t.uow.accounts[id]
	return a, ok
}

func (t *accountTable) FindByID(_ context.Context, id uuid.UUID) (*storage.Account, error) {
	if a, ok := t.staged(id); ok {
		return copyAccount(a), nil
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	a, ok := t.store.accounts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyAccount(a), nil
}

func (t *accountTable) FindByNumber(ctx context.Context, accountNumber string) (*storage.Account, error) {
	if t.uow != nil {
		t.uow.mu.Lock()
		for _, a := range t.uow.accounts {
			if a.AccountNumber == accountNumber {
				t.uow.mu.Unlock()
				return copyAccount(a), nil
			}
		}
		t.uow.mu.Unlock()
	}
	t.store.mu.RLock()
	id, ok := t.store.byNumber[accountNumber]
	t.store.mu.RUnlock()
	if !ok {
		return nil, storage.ErrNotFound
	}
	return t.FindByID(ctx, id)
}

func (t *accountTable) List(_ context.Context, filter *storage.AccountFilter) ([]*storage.Account, error) {
	t.store.mu.RLock()
	rows := make([]*storage.Account, 0, len(t.store.accounts))
	for _, a := range t.store.accounts {
		rows = append(rows, copyAccount(a))
	}
	t.store.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].ID.String() < rows[j].ID.String()
	})
	if filter == nil {
		return rows, nil
	}
	return page(rows, filter.Offset, filter.Limit), nil
}

// FindByIDsForUpdate locks the rows in ascending id order and returns them in
// that order. A missing id fails with storage.ErrNotFound; locks already taken
// stay held until the unit of work ends.
func (t *accountTable) FindByIDsForUpdate(ctx context.Context, ids ...uuid.UUID) ([]*storage.Account, error) {
	if err := t.uow.active(); err != nil {
		return nil, err
	}
	ordered := sortedUnique(ids)
	if err := t.uow.lock(ctx, ordered); err != nil {
		return nil, err
	}
	out := make([]*storage.Account, 0, len(ordered))
	for _, id := range ordered {
		a, err := t.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (t *accountTable) Insert(_ context.Context, create *storage.AccountCreate) (uuid.UUID, error) {
	if err := t.uow.active(); err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}

	t.store.mu.RLock()
	_, numberTaken := t.store.byNumber[create.AccountNumber]
	_, cardTaken := t.store.byCard[create.CardNumber]
	t.store.mu.RUnlock()
	if numberTaken || cardTaken {
		return uuid.Nil, storage.ErrDuplicate
	}

	t.uow.mu.Lock()
	defer t.uow.mu.Unlock()
	for _, a := range t.uow.accounts {
		if a.AccountNumber == create.AccountNumber || a.CardNumber == create.CardNumber {
			return uuid.Nil, storage.ErrDuplicate
		}
	}
	now := t.store.now()
	t.uow.accounts[id] = &storage.Account{
		ID:            id,
		AccountNumber: create.AccountNumber,
		CardNumber:    create.CardNumber,
		Name:          create.Name,
		Balance:       create.Balance,
		Status:        create.Status,
		CardStatus:    create.CardStatus,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return id, nil
}

func (t *accountTable) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	if balance.IsNegative() {
		return storage.ErrConstraint
	}
	return t.update(ctx, id, func(a *storage.Account) {
		a.Balance = balance
	})
}

func (t *accountTable) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AccountStatus, cardStatus domain.CardStatus) error {
	return t.update(ctx, id, func(a *storage.Account) {
		a.Status = status
		a.CardStatus = cardStatus
	})
}

// update requires the row lock, matching an UPDATE on a row selected FOR
// UPDATE earlier in the same transaction.
func (t *accountTable) update(ctx context.Context, id uuid.UUID, apply func(*storage.Account)) error {
	if err := t.uow.active(); err != nil {
		return err
	}
	if err := t.uow.lock(ctx, []uuid.UUID{id}); err != nil {
		return err
	}
	a, err := t.FindByID(ctx, id)
	if err != nil {
		return err
	}
	apply(a)
	a.UpdatedAt = t.store.now()

	t.uow.mu.Lock()
	t.uow.accounts[id] = a
	t.uow.mu.Unlock()
	return nil
}

// page applies offset and returns up to limit+1 rows so callers can detect a
// following page. limit <= 0 returns everything after offset.
func page[T any](rows []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(rows) {
			return rows[:0]
		}
		rows = rows[offset:]
	}
	if limit > 0 && len(rows) > limit+1 {
		rows = rows[:limit+1]
	}
	return rows
}
