package account

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/bank-server/internal/domain"
	"github.com/carson-networks/bank-server/internal/handlers/httperr"
	"github.com/carson-networks/bank-server/internal/service"
)

// SetStatusInput is the Huma input for changing an account's status.
type SetStatusInput struct {
	ID   string `path:"id" format:"uuid" doc:"Account UUID"`
	Body struct {
		Status     string `json:"status" enum:"Active,Frozen,Blocked" doc:"Account status"`
		CardStatus string `json:"cardStatus" enum:"Active,Blocked" doc:"Card status"`
	}
}

// SetStatusOutput is the Huma output for changing an account's status.
type SetStatusOutput struct {
	Body Account
}

type statusSetter interface {
	SetAccountStatus(ctx context.Context, accountID uuid.UUID, status domain.AccountStatus, cardStatus domain.CardStatus) (*service.Account, error)
}

// SetStatusHandler handles PUT /v1/admin/accounts/{id}/status.
type SetStatusHandler struct {
	AccountService statusSetter
}

func NewSetStatusHandler(svc statusSetter) *SetStatusHandler {
	return &SetStatusHandler{AccountService: svc}
}

func (h *SetStatusHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "set-account-status",
		Method:      http.MethodPut,
		Path:        "/v1/admin/accounts/{id}/status",
		Summary:     "Freeze, block or reactivate an account",
		Tags:        []string{"Admin"},
		Security:    adminOnly,
	}, h.handle)
}

func (h *SetStatusHandler) handle(ctx context.Context, input *SetStatusInput) (*SetStatusOutput, error) {
	accountID, err := uuid.FromString(input.ID)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid account id", err)
	}
	account, err := h.AccountService.SetAccountStatus(ctx, accountID, domain.AccountStatus(input.Body.Status), domain.CardStatus(input.Body.CardStatus))
	if err != nil {
		return nil, httperr.FromDomain(ctx, err)
	}
	return &SetStatusOutput{Body: fromService(account)}, nil
}
