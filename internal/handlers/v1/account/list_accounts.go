package account

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/bank-server/internal/handlers/httperr"
	"github.com/carson-networks/bank-server/internal/logging"
	"github.com/carson-networks/bank-server/internal/service"
)

// ListAccountsInput is the Huma input for listing accounts.
type ListAccountsInput struct {
	Position int `query:"position" minimum:"0" doc:"Offset for pagination"`
	Limit    int `query:"limit" minimum:"1" maximum:"100" doc:"Page size, default 20"`
}

// ListAccountsCursor represents a pagination cursor in responses.
type ListAccountsCursor struct {
	Position int `json:"position" doc:"Offset for next page"`
	Limit    int `json:"limit" doc:"Page size"`
}

// ListAccountsResponseBody is the response body for listing accounts.
type ListAccountsResponseBody struct {
	Accounts   []Account           `json:"accounts" doc:"Page of accounts"`
	NextCursor *ListAccountsCursor `json:"nextCursor,omitempty" doc:"Cursor to fetch the next page, absent on the last page"`
}

// ListAccountsOutput is the Huma output for listing accounts.
type ListAccountsOutput struct {
	Body ListAccountsResponseBody
}

// accountLister is the interface for listing accounts.
type accountLister interface {
	ListAccounts(ctx context.Context, cursor *service.AccountCursor) ([]service.Account, *service.AccountCursor, error)
}

// ListAccountsHandler handles GET /v1/admin/accounts.
type ListAccountsHandler struct {
	AccountService accountLister
}

// NewListAccountsHandler creates a new ListAccountsHandler.
func NewListAccountsHandler(svc accountLister) *ListAccountsHandler {
	return &ListAccountsHandler{AccountService: svc}
}

// Register registers the list accounts endpoint with the Huma API.
func (h *ListAccountsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-accounts",
		Method:      http.MethodGet,
		Path:        "/v1/admin/accounts",
		Summary:     "List accounts",
		Description: "Returns a paginated list of accounts.",
		Tags:        []string{"Admin"},
		Security:    adminOnly,
	}, h.handle)
}

func (h *ListAccountsHandler) handle(ctx context.Context, input *ListAccountsInput) (*ListAccountsOutput, error) {
	logData := logging.GetLogData(ctx)

	limit := input.Limit
	if limit == 0 {
		limit = 20
	}

	stopTimer := logData.AddTiming("listAccountsMs")
	accounts, next, err := h.AccountService.ListAccounts(ctx, &service.AccountCursor{
		Position: input.Position,
		Limit:    limit,
	})
	stopTimer()
	if err != nil {
		return nil, httperr.FromDomain(ctx, err)
	}

	logData.AddData("accountCount", len(accounts))

	resp := ListAccountsResponseBody{
		Accounts: make([]Account, len(accounts)),
	}
	for i := range accounts {
		resp.Accounts[i] = fromService(&accounts[i])
	}
	if next != nil {
		resp.NextCursor = &ListAccountsCursor{
			Position: next.Position,
			Limit:    next.Limit,
		}
	}

	return &ListAccountsOutput{Body: resp}, nil
}
