package sqlconfig

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/bank-server/internal/domain"
	"github.com/carson-networks/bank-server/internal/storage"
)

var accountColumns = []string{
	"id", "account_number", "card_number", "name", "balance",
	"status", "card_status", "created_at", "updated_at",
}

// AccountsTable provides access to the accounts table.
type AccountsTable struct {
	exec bob.Executor
}

// Ensure AccountsTable implements IAccountWriter at compile time.
var _ storage.IAccountWriter = (*AccountsTable)(nil)

func (t *AccountsTable) selectAccounts(mods ...bob.Mod[*dialect.SelectQuery]) bob.BaseQuery[*dialect.SelectQuery] {
	base := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns(accountColumns)...),
		sm.From("accounts"),
	}
	return psql.Select(append(base, mods...)...)
}

// FindByID retrieves an account by primary key.
func (t *AccountsTable) FindByID(ctx context.Context, id uuid.UUID) (*storage.Account, error) {
	q := t.selectAccounts(sm.Where(psql.Quote("id").EQ(psql.Arg(id))))
	row, err := bob.One(ctx, t.exec, q, scan.StructMapper[*storage.Account]())
	if err != nil {
		return nil, mapError(err)
	}
	return row, nil
}

// FindByNumber retrieves an account by its external account number.
func (t *AccountsTable) FindByNumber(ctx context.Context, accountNumber string) (*storage.Account, error) {
	q := t.selectAccounts(sm.Where(psql.Quote("account_number").EQ(psql.Arg(accountNumber))))
	row, err := bob.One(ctx, t.exec, q, scan.StructMapper[*storage.Account]())
	if err != nil {
		return nil, mapError(err)
	}
	return row, nil
}

// List returns accounts ordered by name. A positive Limit returns up to
// Limit+1 rows so callers can detect a following page.
func (t *AccountsTable) List(ctx context.Context, filter *storage.AccountFilter) ([]*storage.Account, error) {
	var queryMods []bob.Mod[*dialect.SelectQuery]
	if filter != nil {
		if filter.Limit > 0 {
			queryMods = append(queryMods, sm.Limit(filter.Limit+1))
		}
		if filter.Offset > 0 {
			queryMods = append(queryMods, sm.Offset(filter.Offset))
		}
	}
	queryMods = append(queryMods,
		sm.OrderBy(psql.Quote("name")).Asc(),
		sm.OrderBy(psql.Quote("id")).Asc(),
	)
	rows, err := bob.All(ctx, t.exec, t.selectAccounts(queryMods...), scan.StructMapper[*storage.Account]())
	if err != nil {
		return nil, mapError(err)
	}
	return rows, nil
}

// FindByIDsForUpdate locks the rows in ascending id order. Any id without a
// row fails the call with storage.ErrNotFound.
func (t *AccountsTable) FindByIDsForUpdate(ctx context.Context, ids ...uuid.UUID) ([]*storage.Account, error) {
	unique := make(map[uuid.UUID]struct{}, len(ids))
	vals := make([]any, 0, len(ids))
	for _, id := range ids {
		if _, ok := unique[id]; ok {
			continue
		}
		unique[id] = struct{}{}
		vals = append(vals, id)
	}
	if len(vals) == 0 {
		return nil, nil
	}

	q := t.selectAccounts(
		sm.Where(psql.Quote("id").In(args(vals...)...)),
		sm.OrderBy(psql.Quote("id")).Asc(),
		sm.ForUpdate(),
	)
	rows, err := bob.All(ctx, t.exec, q, scan.StructMapper[*storage.Account]())
	if err != nil {
		return nil, mapError(err)
	}
	if len(rows) != len(vals) {
		return nil, storage.ErrNotFound
	}
	return rows, nil
}

// Insert creates a new account and returns its generated ID.
func (t *AccountsTable) Insert(ctx context.Context, create *storage.AccountCreate) (uuid.UUID, error) {
	q := psql.Insert(
		im.Into("accounts", "account_number", "card_number", "name", "balance", "status", "card_status"),
		im.Values(args(
			create.AccountNumber,
			create.CardNumber,
			create.Name,
			create.Balance,
			string(create.Status),
			string(create.CardStatus),
		)...),
		im.Returning("id"),
	)
	id, err := bob.One(ctx, t.exec, q, scan.SingleColumnMapper[uuid.UUID])
	if err != nil {
		return uuid.Nil, mapError(err)
	}
	return id, nil
}

// UpdateBalance updates the balance for a given account.
func (t *AccountsTable) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	q := psql.Update(
		um.Table("accounts"),
		um.SetCol("balance").ToArg(balance),
		um.SetCol("updated_at").To(psql.Raw("NOW()")),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	return t.execOne(ctx, q)
}

// UpdateStatus sets the account and card status together.
func (t *AccountsTable) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AccountStatus, cardStatus domain.CardStatus) error {
	q := psql.Update(
		um.Table("accounts"),
		um.SetCol("status").ToArg(string(status)),
		um.SetCol("card_status").ToArg(string(cardStatus)),
		um.SetCol("updated_at").To(psql.Raw("NOW()")),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	return t.execOne(ctx, q)
}

func (t *AccountsTable) execOne(ctx context.Context, q bob.Query) error {
	res, err := bob.Exec(ctx, t.exec, q)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
