package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrorKind is the stable category of a money-movement failure.
type ErrorKind string

const (
	KindInvalidAmount          ErrorKind = "InvalidAmount"
	KindInvalidTransferDetails ErrorKind = "InvalidTransferDetails"
	KindAccountNotFound        ErrorKind = "AccountNotFound"
	KindRecipientNotFound      ErrorKind = "RecipientNotFound"
	KindRecipientInactive      ErrorKind = "RecipientInactive"
	KindSelfTransfer           ErrorKind = "SelfTransfer"
	KindInsufficientFunds      ErrorKind = "InsufficientFunds"
	KindLimitExceeded          ErrorKind = "LimitExceeded"
	KindAccountNotActive       ErrorKind = "AccountNotActive"
	KindIdempotencyConflict    ErrorKind = "IdempotencyConflict"
	KindStorageFailure         ErrorKind = "StorageFailure"
)

// Error is a typed failure returned to callers. Message is safe to show to a
// user; the wrapped Err is for logs only.
type Error struct {
	Kind      ErrorKind
	Message   string
	Window    string
	Remaining decimal.Decimal
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Kind, so callers can compare against
// the sentinels below with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidAmount          = &Error{Kind: KindInvalidAmount, Message: "amount must be a positive number within the allowed range"}
	ErrInvalidTransferDetails = &Error{Kind: KindInvalidTransferDetails, Message: "a positive whole amount and a recipient account number are required"}
	ErrAccountNotFound        = &Error{Kind: KindAccountNotFound, Message: "account not found"}
	ErrRecipientNotFound      = &Error{Kind: KindRecipientNotFound, Message: "recipient account not found"}
	ErrRecipientInactive      = &Error{Kind: KindRecipientInactive, Message: "recipient account is not active"}
	ErrSelfTransfer           = &Error{Kind: KindSelfTransfer, Message: "cannot transfer to your own account"}
	ErrInsufficientFunds      = &Error{Kind: KindInsufficientFunds, Message: "insufficient funds"}
	ErrLimitExceeded          = &Error{Kind: KindLimitExceeded, Message: "limit exceeded"}
	ErrAccountNotActive       = &Error{Kind: KindAccountNotActive, Message: "account is not active"}
	ErrIdempotencyConflict    = &Error{Kind: KindIdempotencyConflict, Message: "idempotency key was already used for a different request"}
	ErrStorageFailure         = &Error{Kind: KindStorageFailure, Message: "the operation could not be completed, no changes were made"}
)

// LimitExceeded builds the rejection for a ceiling hit in the given window.
func LimitExceeded(kind, window string, remaining decimal.Decimal) *Error {
	return &Error{
		Kind:      KindLimitExceeded,
		Message:   fmt.Sprintf("%s %s limit exceeded, remaining: %s", window, kind, remaining.StringFixed(2)),
		Window:    window,
		Remaining: remaining,
	}
}

// StorageFailure wraps a cause that must not reach the caller verbatim.
func StorageFailure(cause error) *Error {
	return &Error{
		Kind:    KindStorageFailure,
		Message: ErrStorageFailure.Message,
		Err:     cause,
	}
}

// WithMessage returns a copy of a sentinel with a more specific message.
func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

// AsError converts any error into an *Error. Errors that are not already
// typed are treated as storage failures.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return StorageFailure(err)
}

// KindOf returns the kind of err, or "" for nil.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	return AsError(err).Kind
}
