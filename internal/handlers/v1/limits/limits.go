// Package limits serves the caller's withdrawal and transfer limits.
package limits

import (
	"time"

	"github.com/carson-networks/bank-server/internal/limits"
)

// Usage is one limit kind across both windows.
type Usage struct {
	DailyLimit       string `json:"dailyLimit" doc:"Daily ceiling"`
	DailyUsed        string `json:"dailyUsed" doc:"Consumed today"`
	DailyRemaining   string `json:"dailyRemaining" doc:"Headroom left today"`
	MonthlyLimit     string `json:"monthlyLimit" doc:"Monthly ceiling"`
	MonthlyUsed      string `json:"monthlyUsed" doc:"Consumed this month"`
	MonthlyRemaining string `json:"monthlyRemaining" doc:"Headroom left this month"`
}

// Snapshot is the API response model for an account's limits.
type Snapshot struct {
	AccountID        string `json:"accountId" doc:"Account UUID"`
	Withdrawal       Usage  `json:"withdrawal"`
	Transfer         Usage  `json:"transfer"`
	LastDailyReset   string `json:"lastDailyReset" doc:"RFC3339 time of the last daily reset"`
	LastMonthlyReset string `json:"lastMonthlyReset" doc:"RFC3339 time of the last monthly reset"`
}

func usageFrom(u limits.Usage) Usage {
	return Usage{
		DailyLimit:       u.DailyLimit.String(),
		DailyUsed:        u.DailyUsed.String(),
		DailyRemaining:   u.DailyRemaining.String(),
		MonthlyLimit:     u.MonthlyLimit.String(),
		MonthlyUsed:      u.MonthlyUsed.String(),
		MonthlyRemaining: u.MonthlyRemaining.String(),
	}
}

func snapshotFrom(s *limits.Snapshot) Snapshot {
	return Snapshot{
		AccountID:        s.AccountID.String(),
		Withdrawal:       usageFrom(s.Withdrawal),
		Transfer:         usageFrom(s.Transfer),
		LastDailyReset:   s.LastDailyReset.Format(time.RFC3339),
		LastMonthlyReset: s.LastMonthlyReset.Format(time.RFC3339),
	}
}
