package memstore

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/gofrs/uuid/v5"
)

// rowLocks hands out one exclusive lock per account id. A lock is a
// one-slot channel so waiting can be abandoned when the context ends.
type rowLocks struct {
	mu    sync.Mutex
	slots map[uuid.UUID]chan struct{}
}

func newRowLocks() *rowLocks {
	return &rowLocks{slots: make(map[uuid.UUID]chan struct{})}
}

func (l *rowLocks) slot(id uuid.UUID) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[id]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[id] = ch
	}
	return ch
}

func (l *rowLocks) lock(ctx context.Context, id uuid.UUID) error {
	select {
	case l.slot(id) <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *rowLocks) unlock(id uuid.UUID) {
	<-l.slot(id)
}

// sortedUnique returns ids deduplicated in ascending byte order, the same
// order PostgreSQL uses for uuid columns.
func sortedUnique(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Bytes(), out[j].Bytes()) < 0
	})
	return out
}
