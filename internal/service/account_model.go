package service

import (
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/bank-server/internal/domain"
	"github.com/carson-networks/bank-server/internal/storage"
)

// Account represents an account in the service layer.
type Account struct {
	ID            uuid.UUID
	AccountNumber string
	CardNumber    string
	Name          string
	Balance       decimal.Decimal
	Status        domain.AccountStatus
	CardStatus    domain.CardStatus
	CreatedAt     time.Time
}

// AccountCursor is used for cursor-based pagination of accounts.
type AccountCursor struct {
	Position int
	Limit    int
}

// Recipient is what a sender may learn about a transfer target before
// committing to the transfer.
type Recipient struct {
	Name          string
	AccountNumber string
	Active        bool
}

func accountFromStorage(row *storage.Account) *Account {
	return &Account{
		ID:            row.ID,
		AccountNumber: row.AccountNumber,
		CardNumber:    row.CardNumber,
		Name:          row.Name,
		Balance:       row.Balance,
		Status:        row.Status,
		CardStatus:    row.CardStatus,
		CreatedAt:     row.CreatedAt,
	}
}

// MaskNumber keeps the last four digits of an account or card number.
func MaskNumber(number string) string {
	if len(number) <= 4 {
		return number
	}
	return strings.Repeat("*", len(number)-4) + number[len(number)-4:]
}
