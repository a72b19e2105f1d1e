// Package memstore is an in-process storage backend. Units of work stage
// their changes and publish them atomically on commit; per-account row locks
// give the same serialization as SELECT ... FOR UPDATE.
package memstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/bank-server/internal/storage"
)

var _ storage.Storage = (*Store)(nil)

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("memstore: store closed")

type Store struct {
	mu sync.RWMutex

	accounts     map[uuid.UUID]*storage.Account
	byNumber     map[string]uuid.UUID
	byCard       map[string]uuid.UUID
	limits       map[uuid.UUID]*storage.Limit
	transactions map[string]*storage.Transaction
	idempotency  map[idempotencyKey]string
	transfers    map[string]*storage.Transfer

	locks  *rowLocks
	now    func() time.Time
	closed bool
}

type idempotencyKey struct {
	accountID uuid.UUID
	key       string
}

type Option func(*Store)

// WithClock overrides the clock used for account timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		accounts:     make(map[uuid.UUID]*storage.Account),
		byNumber:     make(map[string]uuid.UUID),
		byCard:       make(map[string]uuid.UUID),
		limits:       make(map[uuid.UUID]*storage.Limit),
		transactions: make(map[string]*storage.Transaction),
		idempotency:  make(map[idempotencyKey]string),
		transfers:    make(map[string]*storage.Transfer),
		locks:        newRowLocks(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read returns tables over committed state only.
func (s *Store) Read() *storage.Reader {
	return &storage.Reader{
		Accounts:     &accountTable{store: s},
		Limits:       &limitTable{store: s},
		Transactions: &transactionTable{store: s},
		Transfers:    &transferTable{store: s},
	}
}

// Write opens a unit of work. Row locks taken through it are released on
// Commit or Rollback.
func (s *Store) Write(ctx context.Context) (*storage.Writer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	u := newUnitOfWork(s)
	return storage.NewWriter(u,
		&accountTable{store: s, uow: u},
		&limitTable{store: s, uow: u},
		&transactionTable{store: s, uow: u},
		&transferTable{store: s, uow: u},
	), nil
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// unitOfWork holds staged rows and the row locks owned by one writer.
type unitOfWork struct {
	store *Store

	mu           sync.Mutex
	held         map[uuid.UUID]struct{}
	accounts     map[uuid.UUID]*storage.Account
	limits       map[uuid.UUID]*storage.Limit
	transactions []*storage.Transaction
	transfers    []*storage.Transfer
	finished     bool
}

var errFinished = errors.New("memstore: unit of work already finished")

func newUnitOfWork(s *Store) *unitOfWork {
	return &unitOfWork{
		store:    s,
		held:     make(map[uuid.UUID]struct{}),
		accounts: make(map[uuid.UUID]*storage.Account),
		limits:   make(map[uuid.UUID]*storage.Limit),
	}
}

func (u *unitOfWork) lock(ctx context.Context, ids []uuid.UUID) error {
	for _, id := range sortedUnique(ids) {
		u.mu.Lock()
		_, ok := u.held[id]
		u.mu.Unlock()
		if ok {
			continue
		}
		if err := u.store.locks.lock(ctx, id); err != nil {
			return err
		}
		u.mu.Lock()
		u.held[id] = struct{}{}
		u.mu.Unlock()
	}
	return nil
}

func (u *unitOfWork) release() {
	for id := range u.held {
		u.store.locks.unlock(id)
	}
	u.held = nil
}

// Commit publishes every staged row or none of them.
func (u *unitOfWork) Commit(_ context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.finished {
		return errFinished
	}
	u.finished = true
	defer u.release()

	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := u.checkUnique(); err != nil {
		return err
	}

	for id, a := range u.accounts {
		s.accounts[id] = a
		s.byNumber[a.AccountNumber] = id
		s.byCard[a.CardNumber] = id
	}
	for id, l := range u.limits {
		s.limits[id] = l
	}
	for _, t := range u.transactions {
		s.transactions[t.ID] = t
		if t.IdempotencyKey != "" {
			s.idempotency[idempotencyKey{t.AccountID, t.IdempotencyKey}] = t.ID
		}
	}
	for _, t := range u.transfers {
		s.transfers[t.ID] = t
	}
	return nil
}

// checkUnique re-validates staged inserts against rows committed by other
// units of work since they were staged. Caller holds s.mu.
func (u *unitOfWork) checkUnique() error {
	s := u.store
	for id, a := range u.accounts {
		if owner, ok := s.byNumber[a.AccountNumber]; ok && owner != id {
			return storage.ErrDuplicate
		}
		if owner, ok := s.byCard[a.CardNumber]; ok && owner != id {
			return storage.ErrDuplicate
		}
	}
	for _, t := range u.transactions {
		if _, ok := s.transactions[t.ID]; ok {
			return storage.ErrDuplicate
		}
		if t.IdempotencyKey != "" {
			if _, ok := s.idempotency[idempotencyKey{t.AccountID, t.IdempotencyKey}]; ok {
				return storage.ErrDuplicate
			}
		}
	}
	for _, t := range u.transfers {
		if _, ok := s.transfers[t.ID]; ok {
			return storage.ErrDuplicate
		}
	}
	return nil
}

// Rollback discards staged rows. Calling it after Commit is a no-op.
func (u *unitOfWork) Rollback(_ context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.finished {
		return nil
	}
	u.finished = true
	u.release()
	return nil
}

func (u *unitOfWork) active() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.finished {
		return errFinished
	}
	return nil
}

func copyAccount(a *storage.Account) *storage.Account {
	c := *a
	return &c
}

func copyLimit(l *storage.Limit) *storage.Limit {
	c := *l
	return &c
}

func copyTransaction(t *storage.Transaction) *storage.Transaction {
	c := *t
	return &c
}

func copyTransfer(t *storage.Transfer) *storage.Transfer {
	c := *t
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	return &c
}
