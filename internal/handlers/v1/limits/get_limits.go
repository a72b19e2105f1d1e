package limits

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/bank-server/internal/auth"
	"github.com/carson-networks/bank-server/internal/handlers/httperr"
	"github.com/carson-networks/bank-server/internal/limits"
)

// GetLimitsOutput is the Huma output for the caller's limits.
type GetLimitsOutput struct {
	Body Snapshot
}

type limitsGetter interface {
	GetLimits(ctx context.Context, accountID uuid.UUID) (*limits.Snapshot, error)
}

// GetLimitsHandler handles GET /v1/limits.
type GetLimitsHandler struct {
	AccountService limitsGetter
}

func NewGetLimitsHandler(svc limitsGetter) *GetLimitsHandler {
	return &GetLimitsHandler{AccountService: svc}
}

func (h *GetLimitsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-limits",
		Method:      http.MethodGet,
		Path:        "/v1/limits",
		Summary:     "Get withdrawal and transfer limits",
		Description: "Reports ceilings, usage and headroom for the current day and month. Reading never changes the counters.",
		Tags:        []string{"Limits"},
		Security:    []map[string][]string{{auth.SecurityScheme: {}}},
	}, h.handle)
}

func (h *GetLimitsHandler) handle(ctx context.Context, _ *struct{}) (*GetLimitsOutput, error) {
	accountID, err := httperr.Caller(ctx)
	if err != nil {
		return nil, err
	}
	snapshot, err := h.AccountService.GetLimits(ctx, accountID)
	if err != nil {
		return nil, httperr.FromDomain(ctx, err)
	}
	return &GetLimitsOutput{Body: snapshotFrom(snapshot)}, nil
}
