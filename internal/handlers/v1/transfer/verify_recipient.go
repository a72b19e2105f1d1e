package transfer

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/bank-server/internal/auth"
	"github.com/carson-networks/bank-server/internal/handlers/httperr"
	"github.com/carson-networks/bank-server/internal/service"
)

// VerifyRecipientInput is the Huma input for verifying a recipient.
type VerifyRecipientInput struct {
	AccountNumber string `query:"accountNumber" required:"true" doc:"Account number to look up"`
}

// VerifyRecipientOutput is the Huma output for verifying a recipient.
type VerifyRecipientOutput struct {
	Body struct {
		Name          string `json:"name" doc:"Account holder name"`
		AccountNumber string `json:"accountNumber" doc:"Masked account number"`
		Active        bool   `json:"active" doc:"Whether the account can currently receive transfers"`
	}
}

type recipientVerifier interface {
	VerifyRecipient(ctx context.Context, senderID uuid.UUID, accountNumber string) (*service.Recipient, error)
}

// VerifyRecipientHandler handles GET /v1/transfers/verify.
type VerifyRecipientHandler struct {
	AccountService recipientVerifier
}

func NewVerifyRecipientHandler(svc recipientVerifier) *VerifyRecipientHandler {
	return &VerifyRecipientHandler{AccountService: svc}
}

func (h *VerifyRecipientHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "verify-recipient",
		Method:      http.MethodGet,
		Path:        "/v1/transfers/verify",
		Summary:     "Verify a recipient",
		Description: "Looks up a transfer target. The transfer itself checks the recipient again.",
		Tags:        []string{"Transfers"},
		Security:    []map[string][]string{{auth.SecurityScheme: {}}},
	}, h.handle)
}

func (h *VerifyRecipientHandler) handle(ctx context.Context, input *VerifyRecipientInput) (*VerifyRecipientOutput, error) {
	senderID, err := httperr.Caller(ctx)
	if err != nil {
		return nil, err
	}
	recipient, err := h.AccountService.VerifyRecipient(ctx, senderID, input.AccountNumber)
	if err != nil {
		return nil, httperr.FromDomain(ctx, err)
	}

	out := &VerifyRecipientOutput{}
	out.Body.Name = recipient.Name
	out.Body.AccountNumber = recipient.AccountNumber
	out.Body.Active = recipient.Active
	return out, nil
}
