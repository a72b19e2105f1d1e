package sqlconfig

import (
	"context"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/bank-server/internal/domain"
	"github.com/carson-networks/bank-server/internal/storage"
)

var transferColumns = []string{
	"id", "transaction_id",
	"sender_id", "sender_name", "sender_account_number", "sender_balance_before", "sender_balance_after",
	"recipient_id", "recipient_name", "recipient_account_number", "recipient_balance_before", "recipient_balance_after",
	"amount", "fee", "status", "description", "created_at", "completed_at",
}

var _ storage.ITransferWriter = (*TransfersTable)(nil)

type TransfersTable struct {
	exec bob.Executor
}

func (t *TransfersTable) selectTransfers(mods ...bob.Mod[*dialect.SelectQuery]) bob.BaseQuery[*dialect.SelectQuery] {
	base := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns(transferColumns)...),
		sm.From("transfers"),
	}
	return psql.Select(append(base, mods...)...)
}

func (t *TransfersTable) FindByID(ctx context.Context, id string) (*storage.Transfer, error) {
	q := t.selectTransfers(sm.Where(psql.Quote("id").EQ(psql.Arg(id))))
	row, err := bob.One(ctx, t.exec, q, scan.StructMapper[*storage.Transfer]())
	if err != nil {
		return nil, mapError(err)
	}
	return row, nil
}

func (t *TransfersTable) FindByTransactionID(ctx context.Context, transactionID string) (*storage.Transfer, error) {
	q := t.selectTransfers(sm.Where(psql.Quote("transaction_id").EQ(psql.Arg(transactionID))))
	row, err := bob.One(ctx, t.exec, q, scan.StructMapper[*storage.Transfer]())
	if err != nil {
		return nil, mapError(err)
	}
	return row, nil
}

func (t *TransfersTable) Insert(ctx context.Context, transfer *storage.Transfer) (string, error) {
	q := psql.Insert(
		im.Into("transfers", transferColumns...),
		im.Values(args(
			transfer.ID,
			transfer.TransactionID,
			transfer.SenderID,
			transfer.SenderName,
			transfer.SenderAccountNumber,
			transfer.SenderBalanceBefore,
			transfer.SenderBalanceAfter,
			transfer.RecipientID,
			transfer.RecipientName,
			transfer.RecipientAccountNumber,
			transfer.RecipientBalanceBefore,
			transfer.RecipientBalanceAfter,
			transfer.Amount,
			transfer.Fee,
			string(transfer.Status),
			transfer.Description,
			transfer.CreatedAt,
			transfer.CompletedAt,
		)...),
	)
	if _, err := bob.Exec(ctx, t.exec, q); err != nil {
		return "", mapError(err)
	}
	return transfer.ID, nil
}

// List returns transfers newest first, as seen by filter.AccountID.
func (t *TransfersTable) List(ctx context.Context, filter *storage.TransferFilter) ([]*storage.Transfer, error) {
	var queryMods []bob.Mod[*dialect.SelectQuery]
	if filter != nil {
		sender := psql.Quote("sender_id").EQ(psql.Arg(filter.AccountID))
		recipient := psql.Quote("recipient_id").EQ(psql.Arg(filter.AccountID))
		switch filter.Direction {
		case domain.TransferDirectionSent:
			queryMods = append(queryMods, sm.Where(sender))
		case domain.TransferDirectionReceived:
			queryMods = append(queryMods, sm.Where(recipient))
		default:
			queryMods = append(queryMods, sm.Where(psql.Or(sender, recipient)))
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
	rows, err := bob.All(ctx, t.exec, t.selectTransfers(queryMods...), scan.StructMapper[*storage.Transfer]())
	if err != nil {
		return nil, mapError(err)
	}
	return rows, nil
}
