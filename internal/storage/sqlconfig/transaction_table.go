package sqlconfig

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/bank-server/internal/storage"
)

var transactionColumns = []string{
	"id", "account_id", "kind", "amount", "resulting_balance",
	"status", "description", "idempotency_key", "created_at",
}

var _ storage.ITransactionWriter = (*TransactionsTable)(nil)

type TransactionsTable struct {
	exec bob.Executor
}

func (t *TransactionsTable) selectTransactions(mods ...bob.Mod[*dialect.SelectQuery]) bob.BaseQuery[*dialect.SelectQuery] {
	base := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns(transactionColumns)...),
		sm.From("transactions"),
	}
	return psql.Select(append(base, mods...)...)
}

// FindByID retrieves a transaction by primary key.
func (t *TransactionsTable) FindByID(ctx context.Context, id string) (*storage.Transaction, error) {
	q := t.selectTransactions(sm.Where(psql.Quote("id").EQ(psql.Arg(id))))
	row, err := bob.One(ctx, t.exec, q, scan.StructMapper[*storage.Transaction]())
	if err != nil {
		return nil, mapError(err)
	}
	return row, nil
}

// FindByIdempotencyKey returns the transaction an account recorded under key.
func (t *TransactionsTable) FindByIdempotencyKey(ctx context.Context, accountID uuid.UUID, key string) (*storage.Transaction, error) {
	if key == "" {
		return nil, storage.ErrNotFound
	}
	q := t.selectTransactions(sm.Where(psql.And(
		psql.Quote("account_id").EQ(psql.Arg(accountID)),
		psql.Quote("idempotency_key").EQ(psql.Arg(key)),
	)))
	row, err := bob.One(ctx, t.exec, q, scan.StructMapper[*storage.Transaction]())
	if err != nil {
		return nil, mapError(err)
	}
	return row, nil
}

// Insert appends a transaction and returns its ID.
func (t *TransactionsTable) Insert(ctx context.Context, transaction *storage.Transaction) (string, error) {
	q := psql.Insert(
		im.Into("transactions", transactionColumns...),
		im.Values(args(
			transaction.ID,
			transaction.AccountID,
			string(transaction.Kind),
			transaction.Amount,
			transaction.ResultingBalance,
			string(transaction.Status),
			transaction.Description,
			transaction.IdempotencyKey,
			transaction.CreatedAt,
		)...),
	)
	if _, err := bob.Exec(ctx, t.exec, q); err != nil {
		return "", mapError(err)
	}
	return transaction.ID, nil
}

// List returns transactions matching the filter, newest first. Nil filter
// returns all.
func (t *TransactionsTable) List(ctx context.Context, filter *storage.TransactionFilter) ([]*storage.Transaction, error) {
	var queryMods []bob.Mod[*dialect.SelectQuery]
	if filter != nil {
		var where []bob.Expression
		if filter.AccountID != nil {
			where = append(where, psql.Quote("account_id").EQ(psql.Arg(*filter.AccountID)))
		}
		if filter.MaxCreationTime != nil {
			where = append(where, psql.Quote("created_at").LTE(psql.Arg(*filter.MaxCreationTime)))
		}
		if len(where) == 1 {
			queryMods = append(queryMods, sm.Where(where[0]))
		} else if len(where) > 1 {
			queryMods = append(queryMods, sm.Where(psql.And(where...)))
		}
		if filter.Limit > 0 {
			queryMods = append(queryMods, sm.Limit(filter.Limit+1))
		}
		if filter.Offset > 0 {
			queryMods = append(queryMods, sm.Offset(filter.Offset))
		}
	}
	queryMods = append(queryMods,
		sm.OrderBy(psql.Quote("created_at")).Desc(),
		sm.OrderBy(psql.Quote("id")).Desc(),
	)
	rows, err := bob.All(ctx, t.exec, t.selectTransactions(queryMods...), scan.StructMapper[*storage.Transaction]())
	if err != nil {
		return nil, mapError(err)
	}
	return rows, nil
}
