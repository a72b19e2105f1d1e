package account

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/bank-server/internal/domain"
	"github.com/carson-networks/bank-server/internal/handlers/httperr"
	"github.com/carson-networks/bank-server/internal/logging"
	"github.com/carson-networks/bank-server/internal/service"
)

// CreateAccountInput is the Huma input for opening an account.
type CreateAccountInput struct {
	Body CreateAccountBody
}

// CreateAccountBody is the request body fields for opening an account.
type CreateAccountBody struct {
	Name           string `json:"name" minLength:"1" maxLength:"255" doc:"Account holder name"`
	OpeningBalance string `json:"openingBalance,omitempty" doc:"Opening balance (e.g. '0' or '1234.56'), defaults to 0"`
}

// CreateAccountOutput is the response for opening an account.
type CreateAccountOutput struct {
	Status int
	Body   Account
}

// accountCreator is the interface for opening accounts.
type accountCreator interface {
	OpenAccount(ctx context.Context, name string, openingBalance decimal.Decimal) (*service.Account, error)
}

// CreateAccountHandler handles POST /v1/admin/accounts.
type CreateAccountHandler struct {
	AccountService accountCreator
}

// NewCreateAccountHandler creates a new CreateAccountHandler.
func NewCreateAccountHandler(svc accountCreator) *CreateAccountHandler {
	return &CreateAccountHandler{AccountService: svc}
}

// Register registers the create account endpoint with the Huma API.
func (h *CreateAccountHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "create-account",
		Method:      http.MethodPost,
		Path:        "/v1/admin/accounts",
		Summary:     "Open an account",
		Description: "Opens an active account with generated account and card numbers.",
		Tags:        []string{"Admin"},
		Security:    adminOnly,
	}, h.handle)
}

func parseCreateAccountInput(input *CreateAccountInput) (decimal.Decimal, error) {
	openingBalanceStr := input.Body.OpeningBalance
	if openingBalanceStr == "" {
		openingBalanceStr = "0"
	}
	return domain.ParseMoney(openingBalanceStr)
}

func (h *CreateAccountHandler) handle(ctx context.Context, input *CreateAccountInput) (*CreateAccountOutput, error) {
	logData := logging.GetLogData(ctx)

	openingBalance, err := parseCreateAccountInput(input)
	if err != nil {
		return nil, httperr.FromDomain(ctx, err)
	}

	stopTimer := logData.AddTiming("createAccountMs")
	account, err := h.AccountService.OpenAccount(ctx, input.Body.Name, openingBalance)
	stopTimer()
	if err != nil {
		return nil, httperr.FromDomain(ctx, err)
	}

	logData.AddData("accountID", account.ID.String())

	return &CreateAccountOutput{
		Status: http.StatusCreated,
		Body:   fromService(account),
	}, nil
}
