package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/bank-server/internal/domain"
	"github.com/carson-networks/bank-server/internal/storage"
)

const defaultLimit = 20

// TransactionService lists an account's ledger history.
type TransactionService struct {
	storage storage.Storage
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(store storage.Storage) *TransactionService {
	return &TransactionService{storage: store}
}

// ListTransactions returns a page of an account's transactions using
// cursor-based pagination, newest first.
func (s *TransactionService) ListTransactions(ctx context.Context, accountID uuid.UUID, cursor *TransactionCursor) ([]Transaction, *TransactionCursor, error) {
	limit := defaultLimit
	offset := 0
	var maxCreationTime *time.Time
	if cursor != nil {
		limit = cursor.Limit
		offset = cursor.Position
		if !cursor.MaxCreationTime.IsZero() {
			maxCreationTime = &cursor.MaxCreationTime
		}
	}

	filter := &storage.TransactionFilter{
		AccountID:       &accountID,
		Limit:           limit,
		Offset:          offset,
		MaxCreationTime: maxCreationTime,
	}

	rows, err := s.storage.Read().Transactions.List(ctx, filter)
	if err != nil {
		return nil, nil, domain.AsError(err)
	}

	if len(rows) == 0 {
		return nil, nil, nil
	}

	var nextCursor *TransactionCursor
	if len(rows) > limit {
		rows = rows[:limit]

		cursorMaxCreationTime := rows[0].CreatedAt
		if maxCreationTime != nil {
			cursorMaxCreationTime = *maxCreationTime
		}

		nextCursor = &TransactionCursor{
			Position:        offset + limit,
			Limit:           limit,
			MaxCreationTime: cursorMaxCreationTime,
		}
	}

	convertedTransactions := make([]Transaction, len(rows))
	for i, row := range rows {
		convertedTransactions[i] = transactionFromStorage(row)
	}

	return convertedTransactions, nextCursor, nil
}

// ListTransfers returns a page of the transfers an account sent, received or
// both.
func (s *TransactionService) ListTransfers(ctx context.Context, accountID uuid.UUID, direction domain.TransferDirection, cursor *TransferCursor) ([]Transfer, *TransferCursor, error) {
	switch direction {
	case "":
		direction = domain.TransferDirectionAll
	case domain.TransferDirectionAll, domain.TransferDirectionSent, domain.TransferDirectionReceived:
	default:
		return nil, nil, domain.ErrInvalidTransferDetails.WithMessage("direction must be all, sent or received")
	}

	limit := defaultLimit
	offset := 0
	if cursor != nil {
		limit = cursor.Limit
		offset = cursor.Position
	}

	rows, err := s.storage.Read().Transfers.List(ctx, &storage.TransferFilter{
		AccountID: accountID,
		Direction: direction,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, nil, domain.AsError(err)
	}

	if len(rows) == 0 {
		return nil, nil, nil
	}

	var nextCursor *TransferCursor
	if len(rows) > limit {
		rows = rows[:limit]
		nextCursor = &TransferCursor{
			Position: offset + limit,
			Limit:    limit,
		}
	}

	transfers := make([]Transfer, len(rows))
	for i, row := range rows {
		transfers[i] = transferFromStorage(row)
	}
	return transfers, nextCursor, nil
}
