package domain

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountStatusActive  AccountStatus = "Active"
	AccountStatusFrozen  AccountStatus = "Frozen"
	AccountStatusBlocked AccountStatus = "Blocked"
)

// Valid reports whether s is a known account status.
func (s AccountStatus) Valid() bool {
	switch s {
	case AccountStatusActive, AccountStatusFrozen, AccountStatusBlocked:
		return true
	}
	return false
}

// CardStatus is the state of the ATM card attached to an account.
type CardStatus string

const (
	CardStatusActive  CardStatus = "Active"
	CardStatusBlocked CardStatus = "Blocked"
)

// Valid reports whether s is a known card status.
func (s CardStatus) Valid() bool {
	return s == CardStatusActive || s == CardStatusBlocked
}

// TransactionKind classifies a ledger record.
type TransactionKind string

const (
	TransactionKindWithdraw TransactionKind = "Withdraw"
	TransactionKindDeposit  TransactionKind = "Deposit"
	TransactionKindTransfer TransactionKind = "Transfer"
)

// TransactionStatus is the status stored on a ledger record.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "Completed"
	TransactionStatusPending   TransactionStatus = "Pending"
	TransactionStatusFailed    TransactionStatus = "Failed"
)

// TransferStatus is the status stored on a transfer record.
type TransferStatus string

const (
	TransferStatusPending    TransferStatus = "Pending"
	TransferStatusProcessing TransferStatus = "Processing"
	TransferStatusCompleted  TransferStatus = "Completed"
	TransferStatusFailed     TransferStatus = "Failed"
	TransferStatusCancelled  TransferStatus = "Cancelled"
)

// TransferDirection selects transfers from one party's perspective.
type TransferDirection string

const (
	TransferDirectionAll      TransferDirection = "all"
	TransferDirectionSent     TransferDirection = "sent"
	TransferDirectionReceived TransferDirection = "received"
)
