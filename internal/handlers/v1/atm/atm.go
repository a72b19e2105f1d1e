// Package atm serves cash withdrawals and deposits.
package atm

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/bank-server/internal/domain"
	"github.com/carson-networks/bank-server/internal/handlers/v1/transaction"
	"github.com/carson-networks/bank-server/internal/service"
)

// MovementBody is the request body shared by withdraw and deposit.
type MovementBody struct {
	Amount         string `json:"amount" minLength:"1" maxLength:"32" doc:"Positive decimal amount, e.g. '200' or '150.50'"`
	IdempotencyKey string `json:"idempotencyKey,omitempty" maxLength:"128" doc:"Optional key; repeating it replays the first result"`
}

// MovementInput is the Huma input for withdraw and deposit.
type MovementInput struct {
	Body MovementBody
}

// MovementResponse is the response body for withdraw and deposit.
type MovementResponse struct {
	NewBalance  string                  `json:"newBalance" doc:"Authoritative balance after the operation; a replay returns the balance recorded by the original request"`
	Transaction transaction.Transaction `json:"transaction" doc:"The ledger record written"`
	Replayed    bool                    `json:"replayed" doc:"True when an earlier result was returned for the same idempotency key"`
}

// MovementOutput is the Huma output for withdraw and deposit.
type MovementOutput struct {
	Body MovementResponse
}

// movementService is the interface for ATM cash movements.
type movementService interface {
	Withdraw(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, idempotencyKey string) (*service.MovementReceipt, error)
	Deposit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, idempotencyKey string) (*service.MovementReceipt, error)
}

func parseAmount(raw string) (decimal.Decimal, error) {
	return domain.ParseMoney(raw)
}

func toOutput(receipt *service.MovementReceipt) *MovementOutput {
	return &MovementOutput{Body: MovementResponse{
		NewBalance:  receipt.NewBalance.String(),
		Transaction: transaction.FromService(receipt.Transaction),
		Replayed:    receipt.Replayed,
	}}
}
