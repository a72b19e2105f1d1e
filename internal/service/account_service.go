package service

import (
	"context"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/bank-server/internal/domain"
	"github.com/carson-networks/bank-server/internal/limits"
	"github.com/carson-networks/bank-server/internal/operator/actions"
	"github.com/carson-networks/bank-server/internal/storage"
)

const defaultAccountLimit = 20

// AccountService handles account queries and administration.
type AccountService struct {
	storage   storage.Storage
	processor Processor
	deps      *actions.Dependencies
}

// NewAccountService creates a new AccountService.
func NewAccountService(store storage.Storage, processor Processor, deps *actions.Dependencies) *AccountService {
	return &AccountService{storage: store, processor: processor, deps: deps}
}

// GetAccount retrieves an account by ID.
func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	row, err := s.storage.Read().Accounts.FindByID(ctx, id)
	if err != nil {
		return nil, readError(err, domain.ErrAccountNotFound)
	}
	return accountFromStorage(row), nil
}

// GetLimits reports both windows of both limit kinds, with any due reset
// applied to the view. It never writes.
func (s *AccountService) GetLimits(ctx context.Context, accountID uuid.UUID) (*limits.Snapshot, error) {
	reader := s.storage.Read()
	if _, err := reader.Accounts.FindByID(ctx, accountID); err != nil {
		return nil, readError(err, domain.ErrAccountNotFound)
	}
	snapshot, err := s.deps.Limits.Snapshot(ctx, reader.Limits, accountID, s.deps.Clock())
	if err != nil {
		return nil, domain.AsError(err)
	}
	return snapshot, nil
}

// VerifyRecipient looks up a transfer target. The answer is advisory: the
// transfer itself checks the recipient again.
func (s *AccountService) VerifyRecipient(ctx context.Context, senderID uuid.UUID, accountNumber string) (*Recipient, error) {
	accountNumber = strings.TrimSpace(accountNumber)
	if accountNumber == "" {
		return nil, domain.ErrInvalidTransferDetails.WithMessage("recipient account number is required")
	}

	reader := s.storage.Read()
	sender, err := reader.Accounts.FindByID(ctx, senderID)
	if err != nil {
		return nil, readError(err, domain.ErrAccountNotFound)
	}
	if sender.AccountNumber == accountNumber {
		return nil, domain.ErrSelfTransfer
	}

	recipient, err := reader.Accounts.FindByNumber(ctx, accountNumber)
	if err != nil {
		return nil, readError(err, domain.ErrRecipientNotFound)
	}
	return &Recipient{
		Name:          recipient.Name,
		AccountNumber: MaskNumber(recipient.AccountNumber),
		Active:        recipient.Status == domain.AccountStatusActive,
	}, nil
}

// ListAccounts returns a page of accounts using cursor pagination.
func (s *AccountService) ListAccounts(ctx context.Context, cursor *AccountCursor) ([]Account, *AccountCursor, error) {
	limit := defaultAccountLimit
	offset := 0
	if cursor != nil {
		limit = cursor.Limit
		offset = cursor.Position
	}

	filter := &storage.AccountFilter{
		Limit:  limit,
		Offset: offset,
	}

	var nextCursor *AccountCursor
	accounts, err := s.storage.Read().Accounts.List(ctx, filter)
	if err != nil {
		return nil, nil, domain.AsError(err)
	}

	if len(accounts) == 0 {
		return nil, nil, nil
	}

	if len(accounts) > limit {
		accounts = accounts[:limit]
		nextCursor = &AccountCursor{
			Position: offset + limit,
			Limit:    limit,
		}
	}

	convertedAccounts := make([]Account, len(accounts))
	for i, account := range accounts {
		convertedAccounts[i] = *accountFromStorage(account)
	}

	return convertedAccounts, nextCursor, nil
}

// OpenAccount creates an active account with generated account and card
// numbers.
func (s *AccountService) OpenAccount(ctx context.Context, name string, openingBalance decimal.Decimal) (*Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidTransferDetails.WithMessage("account name is required")
	}
	if err := domain.CheckMoney(openingBalance); err != nil {
		return nil, err
	}
	action := &actions.OpenAccount{
		Deps:           s.deps,
		Name:           name,
		OpeningBalance: openingBalance,
	}
	if err := process(ctx, s.processor, action); err != nil {
		return nil, err
	}
	return accountFromStorage(action.Result), nil
}

// SetAccountStatus freezes, blocks or reactivates an account and its card.
func (s *AccountService) SetAccountStatus(ctx context.Context, accountID uuid.UUID, status domain.AccountStatus, cardStatus domain.CardStatus) (*Account, error) {
	action := &actions.SetAccountStatus{
		AccountID:  accountID,
		Status:     status,
		CardStatus: cardStatus,
	}
	if err := process(ctx, s.processor, action); err != nil {
		return nil, err
	}
	return accountFromStorage(action.Result), nil
}

// UpdateCeilings replaces the four limit ceilings of an account.
func (s *AccountService) UpdateCeilings(ctx context.Context, accountID uuid.UUID, ceilings limits.Ceilings) (*limits.Snapshot, error) {
	if err := ceilings.Validate(); err != nil {
		return nil, err
	}
	action := &actions.UpdateCeilings{
		Deps:      s.deps,
		AccountID: accountID,
		Ceilings:  ceilings,
	}
	if err := process(ctx, s.processor, action); err != nil {
		return nil, err
	}
	return action.Result, nil
}
