package account

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/bank-server/internal/auth"
	"github.com/carson-networks/bank-server/internal/handlers/httperr"
	"github.com/carson-networks/bank-server/internal/service"
)

// GetAccountOutput is the Huma output for the caller's account.
type GetAccountOutput struct {
	Body Account
}

type accountGetter interface {
	GetAccount(ctx context.Context, id uuid.UUID) (*service.Account, error)
}

// GetAccountHandler handles GET /v1/account.
type GetAccountHandler struct {
	AccountService accountGetter
}

func NewGetAccountHandler(svc accountGetter) *GetAccountHandler {
	return &GetAccountHandler{AccountService: svc}
}

func (h *GetAccountHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-account",
		Method:      http.MethodGet,
		Path:        "/v1/account",
		Summary:     "Get the caller's account",
		Tags:        []string{"Accounts"},
		Security:    []map[string][]string{{auth.SecurityScheme: {}}},
	}, h.handle)
}

func (h *GetAccountHandler) handle(ctx context.Context, _ *struct{}) (*GetAccountOutput, error) {
	accountID, err := httperr.Caller(ctx)
	if err != nil {
		return nil, err
	}
	account, err := h.AccountService.GetAccount(ctx, accountID)
	if err != nil {
		return nil, httperr.FromDomain(ctx, err)
	}
	return &GetAccountOutput{Body: fromService(account)}, nil
}
