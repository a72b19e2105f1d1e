package transaction

import (
	"time"

	"github.com/carson-networks/bank-server/internal/service"
)

// Transaction is the API response model for a ledger record.
// It is used only for responses, not for request bodies.
type Transaction struct {
	ID               string `json:"id" doc:"Transaction id"`
	AccountID        string `json:"accountID" doc:"Account UUID"`
	Kind             string `json:"kind" enum:"Withdraw,Deposit,Transfer" doc:"Transaction kind"`
	Amount           string `json:"amount" doc:"Signed decimal amount, negative for outgoing transfers"`
	ResultingBalance string `json:"resultingBalance" doc:"Account balance after this record"`
	Status           string `json:"status" doc:"Completed, Pending or Failed"`
	Description      string `json:"description" doc:"Human-readable description"`
	CreatedAt        string `json:"createdAt" doc:"RFC3339 creation time"`
}

// FromService converts a service transaction into its response model.
func FromService(tx service.Transaction) Transaction {
	return Transaction{
		ID:               tx.ID,
		AccountID:        tx.AccountID.String(),
		Kind:             string(tx.Kind),
		Amount:           tx.Amount.String(),
		ResultingBalance: tx.ResultingBalance.String(),
		Status:           string(tx.Status),
		Description:      tx.Description,
		CreatedAt:        tx.CreatedAt.Format(time.RFC3339),
	}
}
