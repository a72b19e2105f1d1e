package atm

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/bank-server/internal/auth"
	"github.com/carson-networks/bank-server/internal/handlers/httperr"
	"github.com/carson-networks/bank-server/internal/logging"
)

// WithdrawHandler handles POST /v1/atm/withdraw.
type WithdrawHandler struct {
	MovementService movementService
}

// NewWithdrawHandler creates a new WithdrawHandler.
func NewWithdrawHandler(svc movementService) *WithdrawHandler {
	return &WithdrawHandler{MovementService: svc}
}

// Register registers the withdraw endpoint with the Huma API.
func (h *WithdrawHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "atm-withdraw",
		Method:      http.MethodPost,
		Path:        "/v1/atm/withdraw",
		Summary:     "Withdraw cash",
		Description: "Debits the caller's account, subject to its balance and daily and monthly withdrawal limits.",
		Tags:        []string{"ATM"},
		Security:    []map[string][]string{{auth.SecurityScheme: {}}},
	}, h.handle)
}

func (h *WithdrawHandler) handle(ctx context.Context, input *MovementInput) (*MovementOutput, error) {
	accountID, err := httperr.Caller(ctx)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(input.Body.Amount)
	if err != nil {
		return nil, httperr.FromDomain(ctx, err)
	}

	stopTimer := logging.GetLogData(ctx).AddTiming("withdrawMs")
	receipt, err := h.MovementService.Withdraw(ctx, accountID, amount, input.Body.IdempotencyKey)
	stopTimer()
	if err != nil {
		return nil, httperr.FromDomain(ctx, err)
	}
	return toOutput(receipt), nil
}
