// Package httperr renders service failures as HTTP problem bodies.
package httperr

import (
	"context"
	"net/http"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/bank-server/internal/auth"
	"github.com/carson-networks/bank-server/internal/domain"
	"github.com/carson-networks/bank-server/internal/logging"
)

// APIError is the body of every failed money-movement request. It satisfies
// huma.StatusError.
type APIError struct {
	status    int
	Kind      string `json:"kind" doc:"Stable failure kind, e.g. LimitExceeded"`
	Message   string `json:"message" doc:"Human-readable reason"`
	Window    string `json:"window,omitempty" doc:"daily or monthly, for LimitExceeded"`
	Remaining string `json:"remaining,omitempty" doc:"Headroom left in the window, for LimitExceeded"`
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) GetStatus() int {
	return e.status
}

// Status maps an error kind to its HTTP status code.
func Status(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidAmount, domain.KindInvalidTransferDetails, domain.KindSelfTransfer:
		return http.StatusBadRequest
	case domain.KindAccountNotFound, domain.KindRecipientNotFound:
		return http.StatusNotFound
	case domain.KindIdempotencyConflict:
		return http.StatusConflict
	case domain.KindInsufficientFunds, domain.KindLimitExceeded, domain.KindRecipientInactive, domain.KindAccountNotActive:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// FromDomain converts err into an *APIError. Causes wrapped in storage
// failures are logged, never returned.
func FromDomain(ctx context.Context, err error) error {
	de := domain.AsError(err)
	if de == nil {
		return nil
	}
	if de.Err != nil {
		logging.GetLogData(ctx).AddData("cause", de.Err.Error())
	}
	out := &APIError{
		status:  Status(de.Kind),
		Kind:    string(de.Kind),
		Message: de.Message,
	}
	if de.Kind == domain.KindLimitExceeded {
		out.Window = de.Window
		out.Remaining = de.Remaining.StringFixed(2)
	}
	return out
}

// Caller returns the account of the authenticated caller.
func Caller(ctx context.Context) (uuid.UUID, error) {
	identity, ok := auth.FromContext(ctx)
	if !ok || identity.AccountID == uuid.Nil {
		return uuid.Nil, &APIError{
			status:  http.StatusUnauthorized,
			Kind:    "Unauthorized",
			Message: "an account token is required",
		}
	}
	return identity.AccountID, nil
}
