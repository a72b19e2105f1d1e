package service

import (
	"time"
)

// TransactionCursor is used for cursor-based pagination of transactions.
// MaxCreationTime pins the first page so later pages do not shift when new
// records are appended.
type TransactionCursor struct {
	Position        int
	Limit           int
	MaxCreationTime time.Time
}

// TransferCursor is used for cursor-based pagination of transfers.
type TransferCursor struct {
	Position int
	Limit    int
}
