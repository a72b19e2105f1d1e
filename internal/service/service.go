package service

import (
	"context"
	"errors"

	"github.com/carson-networks/bank-server/internal/domain"
	"github.com/carson-networks/bank-server/internal/metrics"
	"github.com/carson-networks/bank-server/internal/operator"
	"github.com/carson-networks/bank-server/internal/operator/actions"
	"github.com/carson-networks/bank-server/internal/storage"
)

// Processor runs an action as one unit of work. *operator.OperatorDelegator
// satisfies it.
type Processor interface {
	Process(ctx context.Context, action actions.IAction) error
}

// Service is the container for all domain services.
type Service struct {
	Movement    *MovementService
	Account     *AccountService
	Transaction *TransactionService
}

// NewService wires every domain service against the same storage and
// operator.
func NewService(store storage.Storage, processor Processor, deps *actions.Dependencies, policy AmountPolicy, m *metrics.Metrics) *Service {
	return &Service{
		Movement:    NewMovementService(processor, deps, policy, m),
		Account:     NewAccountService(store, processor, deps),
		Transaction: NewTransactionService(store),
	}
}

// process runs action and always returns either nil or a *domain.Error.
func process(ctx context.Context, processor Processor, action actions.IAction) error {
	err := processor.Process(ctx, action)
	if err == nil {
		return nil
	}
	if errors.Is(err, operator.ErrOperatorStopped) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.StorageFailure(err)
	}
	return domain.AsError(err)
}

// readError maps a failed read outside a unit of work.
func readError(err error, notFound *domain.Error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return notFound
	}
	return domain.AsError(err)
}
