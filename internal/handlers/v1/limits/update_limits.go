package limits

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/bank-server/internal/auth"
	"github.com/carson-networks/bank-server/internal/domain"
	"github.com/carson-networks/bank-server/internal/handlers/httperr"
	"github.com/carson-networks/bank-server/internal/limits"
)

// UpdateLimitsBody holds the four ceilings as decimal strings.
type UpdateLimitsBody struct {
	DailyWithdrawal   string `json:"dailyWithdrawal" doc:"Daily withdrawal ceiling"`
	MonthlyWithdrawal string `json:"monthlyWithdrawal" doc:"Monthly withdrawal ceiling"`
	DailyTransfer     string `json:"dailyTransfer" doc:"Daily transfer ceiling"`
	MonthlyTransfer   string `json:"monthlyTransfer" doc:"Monthly transfer ceiling"`
}

// UpdateLimitsInput is the Huma input for replacing an account's ceilings.
type UpdateLimitsInput struct {
	ID   string `path:"id" format:"uuid" doc:"Account UUID"`
	Body UpdateLimitsBody
}

// UpdateLimitsOutput is the Huma output for replacing an account's ceilings.
type UpdateLimitsOutput struct {
	Body Snapshot
}

type ceilingsUpdater interface {
	UpdateCeilings(ctx context.Context, accountID uuid.UUID, ceilings limits.Ceilings) (*limits.Snapshot, error)
}

// UpdateLimitsHandler handles PUT /v1/admin/accounts/{id}/limits.
type UpdateLimitsHandler struct {
	AccountService ceilingsUpdater
}

func NewUpdateLimitsHandler(svc ceilingsUpdater) *UpdateLimitsHandler {
	return &UpdateLimitsHandler{AccountService: svc}
}

func (h *UpdateLimitsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "update-account-limits",
		Method:      http.MethodPut,
		Path:        "/v1/admin/accounts/{id}/limits",
		Summary:     "Replace an account's limit ceilings",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{auth.SecurityScheme: {auth.RoleAdmin}}},
	}, h.handle)
}

func parseCeilings(body UpdateLimitsBody) (limits.Ceilings, error) {
	var c limits.Ceilings
	fields := []struct {
		raw string
		dst *decimal.Decimal
	}{
		{body.DailyWithdrawal, &c.DailyWithdrawal},
		{body.MonthlyWithdrawal, &c.MonthlyWithdrawal},
		{body.DailyTransfer, &c.DailyTransfer},
		{body.MonthlyTransfer, &c.MonthlyTransfer},
	}
	for _, f := range fields {
		v, err := domain.ParseMoney(f.raw)
		if err != nil {
			return limits.Ceilings{}, err
		}
		*f.dst = v
	}
	return c, nil
}

func (h *UpdateLimitsHandler) handle(ctx context.Context, input *UpdateLimitsInput) (*UpdateLimitsOutput, error) {
	accountID, err := uuid.FromString(input.ID)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid account id", err)
	}
	ceilings, err := parseCeilings(input.Body)
	if err != nil {
		return nil, httperr.FromDomain(ctx, err)
	}
	snapshot, err := h.AccountService.UpdateCeilings(ctx, accountID, ceilings)
	if err != nil {
		return nil, httperr.FromDomain(ctx, err)
	}
	return &UpdateLimitsOutput{Body: snapshotFrom(snapshot)}, nil
}
