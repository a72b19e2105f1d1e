package account

import (
	"time"

	"github.com/carson-networks/bank-server/internal/auth"
	"github.com/carson-networks/bank-server/internal/service"
)

// Account is the API response model for an account.
type Account struct {
	ID            string `json:"id" doc:"Account UUID"`
	AccountNumber string `json:"accountNumber" doc:"Account number used by transfer senders"`
	CardNumber    string `json:"cardNumber" doc:"Masked card number"`
	Name          string `json:"name" doc:"Account holder name"`
	Balance       string `json:"balance" doc:"Decimal balance"`
	Status        string `json:"status" enum:"Active,Frozen,Blocked" doc:"Account status"`
	CardStatus    string `json:"cardStatus" enum:"Active,Blocked" doc:"Card status"`
	CreatedAt     string `json:"createdAt" doc:"RFC3339 creation time"`
}

func fromService(a *service.Account) Account {
	return Account{
		ID:            a.ID.String(),
		AccountNumber: a.AccountNumber,
		CardNumber:    service.MaskNumber(a.CardNumber),
		Name:          a.Name,
		Balance:       a.Balance.String(),
		Status:        string(a.Status),
		CardStatus:    string(a.CardStatus),
		CreatedAt:     a.CreatedAt.Format(time.RFC3339),
	}
}

// adminOnly is the security requirement of the administration endpoints.
var adminOnly = []map[string][]string{{auth.SecurityScheme: {auth.RoleAdmin}}}
