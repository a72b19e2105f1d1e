package transfer

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/bank-server/internal/auth"
	"github.com/carson-networks/bank-server/internal/domain"
	"github.com/carson-networks/bank-server/internal/handlers/httperr"
	"github.com/carson-networks/bank-server/internal/logging"
	"github.com/carson-networks/bank-server/internal/service"
)

// CreateTransferBody is the request body for a transfer.
type CreateTransferBody struct {
	ToAccountNumber string `json:"toAccountNumber" doc:"Recipient account number"`
	Amount          string `json:"amount" maxLength:"32" doc:"Whole positive amount"`
	Description     string `json:"description,omitempty" maxLength:"255" doc:"Optional reference, defaults to 'Transfer to <name>'"`
	IdempotencyKey  string `json:"idempotencyKey,omitempty" maxLength:"128" doc:"Optional key; repeating it replays the first result"`
}

// CreateTransferInput is the Huma input for a transfer.
type CreateTransferInput struct {
	Body CreateTransferBody
}

// CreateTransferResponse is the response body for a transfer.
type CreateTransferResponse struct {
	NewBalance string   `json:"newBalance" doc:"Sender's balance after the transfer; a replay returns the balance recorded by the original request"`
	Transfer   Transfer `json:"transfer"`
	Replayed   bool     `json:"replayed" doc:"True when an earlier result was returned for the same idempotency key"`
}

// CreateTransferOutput is the Huma output for a transfer.
type CreateTransferOutput struct {
	Status int
	Body   CreateTransferResponse
}

// transferCreator is the interface for making transfers.
type transferCreator interface {
	Transfer(ctx context.Context, senderID uuid.UUID, toAccountNumber string, amount decimal.Decimal, description, idempotencyKey string) (*service.TransferReceipt, error)
}

// CreateTransferHandler handles POST /v1/transfers.
type CreateTransferHandler struct {
	MovementService transferCreator
}

// NewCreateTransferHandler creates a new CreateTransferHandler.
func NewCreateTransferHandler(svc transferCreator) *CreateTransferHandler {
	return &CreateTransferHandler{MovementService: svc}
}

// Register registers the transfer endpoint with the Huma API.
func (h *CreateTransferHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-transfer",
		Method:        http.MethodPost,
		Path:          "/v1/transfers",
		Summary:       "Transfer money",
		Description:   "Moves a whole amount from the caller's account to another active account.",
		Tags:          []string{"Transfers"},
		Security:      []map[string][]string{{auth.SecurityScheme: {}}},
		DefaultStatus: http.StatusCreated,
	}, h.handle)
}

func (h *CreateTransferHandler) handle(ctx context.Context, input *CreateTransferInput) (*CreateTransferOutput, error) {
	logData := logging.GetLogData(ctx)
	senderID, err := httperr.Caller(ctx)
	if err != nil {
		return nil, err
	}
	amount, err := domain.ParseMoney(input.Body.Amount)
	if err != nil {
		return nil, httperr.FromDomain(ctx, domain.ErrInvalidTransferDetails.WithMessage(domain.AsError(err).Message))
	}

	stopTimer := logData.AddTiming("transferMs")
	receipt, err := h.MovementService.Transfer(ctx, senderID, input.Body.ToAccountNumber, amount, input.Body.Description, input.Body.IdempotencyKey)
	stopTimer()
	if err != nil {
		return nil, httperr.FromDomain(ctx, err)
	}

	status := http.StatusCreated
	if receipt.Replayed {
		status = http.StatusOK
	}
	return &CreateTransferOutput{
		Status: status,
		Body: CreateTransferResponse{
			NewBalance: receipt.NewBalance.String(),
			Transfer:   fromService(receipt.Transfer, senderID.String()),
			Replayed:   receipt.Replayed,
		},
	}, nil
}
