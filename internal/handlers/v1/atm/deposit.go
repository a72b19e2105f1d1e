package atm

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/bank-server/internal/auth"
	"github.com/carson-networks/bank-server/internal/handlers/httperr"
	"github.com/carson-networks/bank-server/internal/logging"
)

// DepositHandler handles POST /v1/atm/deposit.
type DepositHandler struct {
	MovementService movementService
}

func NewDepositHandler(svc movementService) *DepositHandler {
	return &DepositHandler{MovementService: svc}
}

func (h *DepositHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "atm-deposit",
		Method:      http.MethodPost,
		Path:        "/v1/atm/deposit",
		Summary:     "Deposit cash",
		Description: "Credits the caller's account. Deposits are not limited.",
		Tags:        []string{"ATM"},
		Security:    []map[string][]string{{auth.SecurityScheme: {}}},
	}, h.handle)
}

func (h *DepositHandler) handle(ctx context.Context, input *MovementInput) (*MovementOutput, error) {
	accountID, err := httperr.Caller(ctx)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(input.Body.Amount)
	if err != nil {
		return nil, httperr.FromDomain(ctx, err)
	}

	stopTimer := logging.GetLogData(ctx).AddTiming("depositMs")
	receipt, err := h.MovementService.Deposit(ctx, accountID, amount, input.Body.IdempotencyKey)
	stopTimer()
	if err != nil {
		return nil, httperr.FromDomain(ctx, err)
	}
	return toOutput(receipt), nil
}
