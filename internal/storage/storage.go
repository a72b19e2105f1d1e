package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Find* lookups that match no row.
var ErrNotFound = errors.New("storage: record not found")

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
var ErrDuplicate = errors.New("storage: duplicate record")

// ErrConstraint is returned when a write violates a check constraint, such as
// a negative account balance.
var ErrConstraint = errors.New("storage: constraint violation")

// Storage is the persistence backend. Read gives a non-transactional view of
// committed state; Write opens a unit of work.
type Storage interface {
	Read() *Reader
	Write(ctx context.Context) (*Writer, error)
	// Ping reports whether the backend can currently serve requests.
	Ping(ctx context.Context) error
	Close() error
}
