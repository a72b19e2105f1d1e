package sqlconfig

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"

	"github.com/carson-networks/bank-server/internal/config"
	"github.com/carson-networks/bank-server/internal/storage"
)

var _ storage.Storage = (*Storage)(nil)

// Storage is the PostgreSQL backend. Every unit of work is one database
// transaction.
type Storage struct {
	sqlDB *sql.DB
	db    bob.DB
}

// NewStorage opens a connection pool for cfg. The pool connects lazily.
func NewStorage(cfg config.PostgresConfig) (*Storage, error) {
	sqlDB, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	return New(sqlDB), nil
}

func New(sqlDB *sql.DB) *Storage {
	return &Storage{sqlDB: sqlDB, db: bob.NewDB(sqlDB)}
}

// DB exposes the pool for migrations and health checks.
func (s *Storage) DB() *sql.DB {
	return s.sqlDB
}

func (s *Storage) Read() *storage.Reader {
	return &storage.Reader{
		Accounts:     &AccountsTable{exec: s.db},
		Limits:       &LimitsTable{exec: s.db},
		Transactions: &TransactionsTable{exec: s.db},
		Transfers:    &TransfersTable{exec: s.db},
	}
}

func (s *Storage) Write(ctx context.Context) (*storage.Writer, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("BeginTx: %w", err)
	}
	return storage.NewWriter(&tx,
		&AccountsTable{exec: &tx},
		&LimitsTable{exec: &tx},
		&TransactionsTable{exec: &tx},
		&TransfersTable{exec: &tx},
	), nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

func (s *Storage) Close() error {
	return s.sqlDB.Close()
}

// mapError translates driver errors into the storage sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return fmt.Errorf("%w: %s", storage.ErrDuplicate, pqErr.Constraint)
		case "check_violation":
			return fmt.Errorf("%w: %s", storage.ErrConstraint, pqErr.Constraint)
		}
	}
	return err
}

func args(vals ...any) []bob.Expression {
	out := make([]bob.Expression, len(vals))
	for i, v := range vals {
		out[i] = psql.Arg(v)
	}
	return out
}

func columns(names []string) []any {
	out := make([]any, len(names))
	for i, n := range names {
		out[i] = n
	}
	return out
}
