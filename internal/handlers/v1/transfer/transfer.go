// Package transfer serves account-to-account transfers.
package transfer

import (
	"time"

	"github.com/carson-networks/bank-server/internal/service"
)

// Party is one side of a transfer with its balance snapshot.
type Party struct {
	Name          string `json:"name" doc:"Account holder name"`
	AccountNumber string `json:"accountNumber" doc:"Account number"`
	BalanceBefore string `json:"balanceBefore,omitempty" doc:"Balance before the transfer, shown only to this party"`
	BalanceAfter  string `json:"balanceAfter,omitempty" doc:"Balance after the transfer, shown only to this party"`
}

// Transfer is the API response model for a transfer.
type Transfer struct {
	ID            string `json:"id" doc:"Transfer id"`
	TransactionID string `json:"transactionId" doc:"Sender's ledger record"`
	Direction     string `json:"direction" enum:"sent,received" doc:"Whether the caller sent or received this transfer"`
	Sender        Party  `json:"sender"`
	Recipient     Party  `json:"recipient"`
	Amount        string `json:"amount" doc:"Transferred amount"`
	Fee           string `json:"fee" doc:"Fee charged to the sender"`
	Status        string `json:"status" doc:"Transfer status"`
	Description   string `json:"description" doc:"Description or reference"`
	CreatedAt     string `json:"createdAt" doc:"RFC3339 creation time"`
	CompletedAt   string `json:"completedAt,omitempty" doc:"RFC3339 completion time"`
}

// fromService renders tr from the caller's perspective: the other party's
// balances are never shown.
func fromService(tr service.Transfer, caller string) Transfer {
	out := Transfer{
		ID:            tr.ID,
		TransactionID: tr.TransactionID,
		Direction:     "received",
		Sender:        Party{Name: tr.SenderName, AccountNumber: tr.SenderAccountNumber},
		Recipient:     Party{Name: tr.RecipientName, AccountNumber: tr.RecipientAccountNumber},
		Amount:        tr.Amount.String(),
		Fee:           tr.Fee.String(),
		Status:        string(tr.Status),
		Description:   tr.Description,
		CreatedAt:     tr.CreatedAt.Format(time.RFC3339),
	}
	if tr.SenderID.String() == caller {
		out.Direction = "sent"
		out.Sender.BalanceBefore = tr.SenderBalanceBefore.String()
		out.Sender.BalanceAfter = tr.SenderBalanceAfter.String()
		out.Recipient.AccountNumber = service.MaskNumber(tr.RecipientAccountNumber)
	} else {
		out.Recipient.BalanceBefore = tr.RecipientBalanceBefore.String()
		out.Recipient.BalanceAfter = tr.RecipientBalanceAfter.String()
		out.Sender.AccountNumber = service.MaskNumber(tr.SenderAccountNumber)
	}
	if tr.CompletedAt != nil {
		out.CompletedAt = tr.CompletedAt.Format(time.RFC3339)
	}
	return out
}
