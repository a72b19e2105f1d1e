package transfer

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/bank-server/internal/auth"
	"github.com/carson-networks/bank-server/internal/domain"
	"github.com/carson-networks/bank-server/internal/handlers/handlertest"
	"github.com/carson-networks/bank-server/internal/service"
)

type mockTransferService struct {
	mock.Mock
}

func (m *mockTransferService) Transfer(ctx context.Context, senderID uuid.UUID, to string, amount decimal.Decimal, description, key string) (*service.TransferReceipt, error) {
	args := m.Called(ctx, senderID, to, amount, description, key)
	receipt, _ := args.Get(0).(*service.TransferReceipt)
	return receipt, args.Error(1)
}

func (m *mockTransferService) VerifyRecipient(ctx context.Context, senderID uuid.UUID, accountNumber string) (*service.Recipient, error) {
	args := m.Called(ctx, senderID, accountNumber)
	recipient, _ := args.Get(0).(*service.Recipient)
	return recipient, args.Error(1)
}

func (m *mockTransferService) ListTransfers(ctx context.Context, accountID uuid.UUID, direction domain.TransferDirection, cursor *service.TransferCursor) ([]service.Transfer, *service.TransferCursor, error) {
	args := m.Called(ctx, accountID, direction, cursor)
	transfers, _ := args.Get(0).([]service.Transfer)
	next, _ := args.Get(1).(*service.TransferCursor)
	return transfers, next, args.Error(2)
}

var (
	caller    = uuid.Must(uuid.NewV4())
	recipient = uuid.Must(uuid.NewV4())
)

func newTestAPI(t *testing.T, svc *mockTransferService) humatest.TestAPI {
	t.Helper()
	api := handlertest.NewAPI(t, &auth.Identity{AccountID: caller})
	NewCreateTransferHandler(svc).Register(api)
	NewVerifyRecipientHandler(svc).Register(api)
	NewListTransfersHandler(svc).Register(api)
	return api
}

func sampleTransfer(senderID, recipientID uuid.UUID) service.Transfer {
	completed := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	return service.Transfer{
		ID:                     "TRF1",
		TransactionID:          "TXN1",
		SenderID:               senderID,
		SenderName:             "Ada",
		SenderAccountNumber:    "1111111111",
		SenderBalanceBefore:    decimal.NewFromInt(5000),
		SenderBalanceAfter:     decimal.Zero,
		RecipientID:            recipientID,
		RecipientName:          "Grace",
		RecipientAccountNumber: "2222222222",
		RecipientBalanceBefore: decimal.NewFromInt(2000),
		RecipientBalanceAfter:  decimal.NewFromInt(7000),
		Amount:                 decimal.NewFromInt(5000),
		Fee:                    decimal.Zero,
		Status:                 domain.TransferStatusCompleted,
		Description:            "Transfer to Grace",
		CreatedAt:              completed,
		CompletedAt:            &completed,
	}
}

func TestHTTP_CreateTransfer(t *testing.T) {
	mockSvc := new(mockTransferService)
	mockSvc.On("Transfer", mock.Anything, caller, "2222222222", mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.NewFromInt(5000))
	}), "", "k1").Return(&service.TransferReceipt{
		NewBalance: decimal.Zero,
		Transfer:   sampleTransfer(caller, recipient),
	}, nil)

	resp := newTestAPI(t, mockSvc).Post("/v1/transfers", CreateTransferBody{
		ToAccountNumber: "2222222222",
		Amount:          "5000",
		IdempotencyKey:  "k1",
	})

	require.Equal(t, http.StatusCreated, resp.Code)
	var body CreateTransferResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "0", body.NewBalance)
	assert.Equal(t, "sent", body.Transfer.Direction)
	assert.Equal(t, "5000", body.Transfer.Sender.BalanceBefore)
	assert.Empty(t, body.Transfer.Recipient.BalanceAfter)
	assert.Equal(t, "******2222", body.Transfer.Recipient.AccountNumber)
	assert.Equal(t, "Completed", body.Transfer.Status)
	assert.Equal(t, "2026-03-10T09:00:00Z", body.Transfer.CompletedAt)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_CreateTransfer_Replayed(t *testing.T) {
	mockSvc := new(mockTransferService)
	mockSvc.On("Transfer", mock.Anything, caller, "2222222222", mock.Anything, "", "k1").Return(&service.TransferReceipt{
		Transfer: sampleTransfer(caller, recipient),
		Replayed: true,
	}, nil)

	resp := newTestAPI(t, mockSvc).Post("/v1/transfers", CreateTransferBody{
		ToAccountNumber: "2222222222",
		Amount:          "5000",
		IdempotencyKey:  "k1",
	})

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"replayed":true`)
}

func TestHTTP_CreateTransfer_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"self transfer", domain.ErrSelfTransfer, http.StatusBadRequest},
		{"invalid details", domain.ErrInvalidTransferDetails, http.StatusBadRequest},
		{"unknown recipient", domain.ErrRecipientNotFound, http.StatusNotFound},
		{"inactive recipient", domain.ErrRecipientInactive, http.StatusUnprocessableEntity},
		{"limit", domain.LimitExceeded("transfer", "monthly", decimal.NewFromInt(10)), http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(mockTransferService)
			mockSvc.On("Transfer", mock.Anything, caller, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			resp := newTestAPI(t, mockSvc).Post("/v1/transfers", CreateTransferBody{ToAccountNumber: "2222222222", Amount: "10"})

			assert.Equal(t, tt.status, resp.Code)
			assert.Contains(t, resp.Body.String(), string(domain.KindOf(tt.err)))
		})
	}
}

func TestHTTP_CreateTransfer_AmountNotANumber(t *testing.T) {
	mockSvc := new(mockTransferService)

	resp := newTestAPI(t, mockSvc).Post("/v1/transfers", CreateTransferBody{ToAccountNumber: "2222222222", Amount: "ten"})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "InvalidTransferDetails")
	mockSvc.AssertNotCalled(t, "Transfer")
}

func TestHTTP_CreateTransfer_AmountScaleRejected(t *testing.T) {
	for _, amount := range []string{"10.005", "1e-30000000"} {
		t.Run(amount, func(t *testing.T) {
			mockSvc := new(mockTransferService)

			resp := newTestAPI(t, mockSvc).Post("/v1/transfers", CreateTransferBody{ToAccountNumber: "2222222222", Amount: amount})

			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.Contains(t, resp.Body.String(), "InvalidTransferDetails")
			mockSvc.AssertNotCalled(t, "Transfer")
		})
	}
}

func TestHTTP_VerifyRecipient(t *testing.T) {
	mockSvc := new(mockTransferService)
	mockSvc.On("VerifyRecipient", mock.Anything, caller, "2222222222").
		Return(&service.Recipient{Name: "Grace", AccountNumber: "******2222", Active: true}, nil)

	resp := newTestAPI(t, mockSvc).Get("/v1/transfers/verify?accountNumber=2222222222")

	require.Equal(t, http.StatusOK, resp.Code)
	var body VerifyRecipientOutput
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body.Body))
	assert.Equal(t, "Grace", body.Body.Name)
	assert.Equal(t, "******2222", body.Body.AccountNumber)
	assert.True(t, body.Body.Active)
}

func TestHTTP_VerifyRecipient_NotFound(t *testing.T) {
	mockSvc := new(mockTransferService)
	mockSvc.On("VerifyRecipient", mock.Anything, caller, "9999999999").Return(nil, domain.ErrRecipientNotFound)

	resp := newTestAPI(t, mockSvc).Get("/v1/transfers/verify?accountNumber=9999999999")

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestHTTP_ListTransfers(t *testing.T) {
	mockSvc := new(mockTransferService)
	mockSvc.On("ListTransfers", mock.Anything, caller, domain.TransferDirectionReceived, &service.TransferCursor{Position: 0, Limit: 1}).
		Return([]service.Transfer{sampleTransfer(recipient, caller)}, &service.TransferCursor{Position: 1, Limit: 1}, nil)

	resp := newTestAPI(t, mockSvc).Get("/v1/transfers?direction=received&limit=1")

	require.Equal(t, http.StatusOK, resp.Code)
	var body ListTransfersResponseBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Transfers, 1)
	assert.Equal(t, "received", body.Transfers[0].Direction)
	assert.Equal(t, "7000", body.Transfers[0].Recipient.BalanceAfter)
	assert.Empty(t, body.Transfers[0].Sender.BalanceBefore)
	assert.Equal(t, "******1111", body.Transfers[0].Sender.AccountNumber)
	require.NotNil(t, body.NextCursor)
	assert.Equal(t, 1, body.NextCursor.Position)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_ListTransfers_DefaultsAndValidation(t *testing.T) {
	mockSvc := new(mockTransferService)
	mockSvc.On("ListTransfers", mock.Anything, caller, domain.TransferDirectionAll, &service.TransferCursor{Position: 0, Limit: 20}).
		Return(([]service.Transfer)(nil), (*service.TransferCursor)(nil), nil)

	api := newTestAPI(t, mockSvc)
	resp := api.Get("/v1/transfers")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"transfers":[]`)

	resp = api.Get("/v1/transfers?direction=sideways")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	mockSvc.AssertExpectations(t)
}
