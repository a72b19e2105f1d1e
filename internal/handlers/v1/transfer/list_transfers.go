package transfer

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/bank-server/internal/auth"
	"github.com/carson-networks/bank-server/internal/domain"
	"github.com/carson-networks/bank-server/internal/handlers/httperr"
	"github.com/carson-networks/bank-server/internal/logging"
	"github.com/carson-networks/bank-server/internal/service"
)

// ListTransfersInput is the Huma input for listing transfers.
type ListTransfersInput struct {
	Direction string `query:"direction" enum:"all,sent,received" default:"all" doc:"Which transfers to include"`
	Position  int    `query:"position" minimum:"0" doc:"Offset for pagination"`
	Limit     int    `query:"limit" minimum:"1" maximum:"100" default:"20" doc:"Page size"`
}

// ListTransfersCursor points at the next page.
type ListTransfersCursor struct {
	Position int `json:"position" doc:"Offset for next page"`
	Limit    int `json:"limit" doc:"Page size"`
}

// ListTransfersResponseBody is the response body for listing transfers.
type ListTransfersResponseBody struct {
	Transfers  []Transfer           `json:"transfers" doc:"Page of transfers, newest first"`
	NextCursor *ListTransfersCursor `json:"nextCursor,omitempty" doc:"Cursor to fetch the next page, absent on the last page"`
}

// ListTransfersOutput is the Huma output for listing transfers.
type ListTransfersOutput struct {
	Body ListTransfersResponseBody
}

type transferLister interface {
	ListTransfers(ctx context.Context, accountID uuid.UUID, direction domain.TransferDirection, cursor *service.TransferCursor) ([]service.Transfer, *service.TransferCursor, error)
}

// ListTransfersHandler handles GET /v1/transfers.
type ListTransfersHandler struct {
	TransactionService transferLister
}

func NewListTransfersHandler(svc transferLister) *ListTransfersHandler {
	return &ListTransfersHandler{TransactionService: svc}
}

func (h *ListTransfersHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-transfers",
		Method:      http.MethodGet,
		Path:        "/v1/transfers",
		Summary:     "List transfers",
		Description: "Returns transfers the caller sent, received, or both.",
		Tags:        []string{"Transfers"},
		Security:    []map[string][]string{{auth.SecurityScheme: {}}},
	}, h.handle)
}

func (h *ListTransfersHandler) handle(ctx context.Context, input *ListTransfersInput) (*ListTransfersOutput, error) {
	logData := logging.GetLogData(ctx)
	accountID, err := httperr.Caller(ctx)
	if err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit == 0 {
		limit = 20
	}
	cursor := &service.TransferCursor{Position: input.Position, Limit: limit}

	stopTimer := logData.AddTiming("listTransfersMs")
	transfers, next, err := h.TransactionService.ListTransfers(ctx, accountID, domain.TransferDirection(input.Direction), cursor)
	stopTimer()
	if err != nil {
		return nil, httperr.FromDomain(ctx, err)
	}
	logData.AddData("transferCount", len(transfers))

	resp := ListTransfersResponseBody{Transfers: make([]Transfer, len(transfers))}
	for i, tr := range transfers {
		resp.Transfers[i] = fromService(tr, accountID.String())
	}
	if next != nil {
		resp.NextCursor = &ListTransfersCursor{Position: next.Position, Limit: next.Limit}
	}
	return &ListTransfersOutput{Body: resp}, nil
}
