package service

import (
	"context"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/bank-server/internal/domain"
	"github.com/carson-networks/bank-server/internal/logging"
	"github.com/carson-networks/bank-server/internal/metrics"
	"github.com/carson-networks/bank-server/internal/operator/actions"
)

// MovementService moves money: ATM withdrawals and deposits, and transfers
// between accounts. Every call is one unit of work on the operator.
type MovementService struct {
	processor Processor
	deps      *actions.Dependencies
	policy    AmountPolicy
	metrics   *metrics.Metrics
}

func NewMovementService(processor Processor, deps *actions.Dependencies, policy AmountPolicy, m *metrics.Metrics) *MovementService {
	return &MovementService{
		processor: processor,
		deps:      deps,
		policy:    policy,
		metrics:   m,
	}
}

// Withdraw takes amount out of the account, subject to its balance and its
// daily and monthly withdrawal ceilings.
func (s *MovementService) Withdraw(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, idempotencyKey string) (*MovementReceipt, error) {
	start := time.Now()
	action := &actions.Withdraw{
		Deps:           s.deps,
		AccountID:      accountID,
		Amount:         amount,
		IdempotencyKey: idempotencyKey,
	}
	err := s.policy.Validate(amount)
	if err == nil {
		err = process(ctx, s.processor, action)
	}
	return s.movementOutcome(ctx, metrics.OperationWithdraw, accountID, action.Result, err, start)
}

// Deposit puts amount into the account. Deposits are not limited.
func (s *MovementService) Deposit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, idempotencyKey string) (*MovementReceipt, error) {
	start := time.Now()
	action := &actions.Deposit{
		Deps:           s.deps,
		AccountID:      accountID,
		Amount:         amount,
		IdempotencyKey: idempotencyKey,
	}
	err := s.policy.Validate(amount)
	if err == nil {
		err = process(ctx, s.processor, action)
	}
	return s.movementOutcome(ctx, metrics.OperationDeposit, accountID, action.Result, err, start)
}

func (s *MovementService) movementOutcome(ctx context.Context, operation string, accountID uuid.UUID, result *actions.MovementResult, err error, start time.Time) (*MovementReceipt, error) {
	replayed := err == nil && result != nil && result.Replayed
	s.metrics.ObserveMovement(operation, replayed, err, time.Since(start))

	logData := logging.GetLogData(ctx)
	logData.AddData("accountID", accountID.String())
	logData.AddData("operation", operation)
	if err != nil {
		logData.AddData("errorKind", string(domain.KindOf(err)))
		return nil, err
	}
	logData.AddData("transactionID", result.Transaction.ID)
	logData.AddData("replayed", replayed)

	return &MovementReceipt{
		NewBalance:  result.NewBalance,
		Transaction: transactionFromStorage(result.Transaction),
		Replayed:    result.Replayed,
	}, nil
}

// Transfer moves a whole amount from the sender to the account with number
// toAccountNumber. The recipient's status is checked again on the locked
// row, whatever an earlier verify call reported.
func (s *MovementService) Transfer(ctx context.Context, senderID uuid.UUID, toAccountNumber string, amount decimal.Decimal, description, idempotencyKey string) (*TransferReceipt, error) {
	start := time.Now()
	toAccountNumber = strings.TrimSpace(toAccountNumber)
	action := &actions.Transfer{
		Deps:            s.deps,
		SenderID:        senderID,
		ToAccountNumber: toAccountNumber,
		Amount:          amount,
		Description:     strings.TrimSpace(description),
		IdempotencyKey:  idempotencyKey,
	}

	err := validateTransfer(toAccountNumber, amount)
	if err == nil {
		err = s.policy.Validate(amount)
	}
	if err == nil {
		err = process(ctx, s.processor, action)
	}

	replayed := err == nil && action.Result.Replayed
	s.metrics.ObserveMovement(metrics.OperationTransfer, replayed, err, time.Since(start))

	logData := logging.GetLogData(ctx)
	logData.AddData("accountID", senderID.String())
	logData.AddData("operation", metrics.OperationTransfer)
	if err != nil {
		logData.AddData("errorKind", string(domain.KindOf(err)))
		return nil, err
	}
	logData.AddData("transferID", action.Result.Transfer.ID)
	logData.AddData("replayed", replayed)

	return &TransferReceipt{
		NewBalance: action.Result.NewBalance,
		Transfer:   transferFromStorage(action.Result.Transfer),
		Replayed:   action.Result.Replayed,
	}, nil
}

func validateTransfer(toAccountNumber string, amount decimal.Decimal) error {
	if toAccountNumber == "" {
		return domain.ErrInvalidTransferDetails.WithMessage("recipient account number is required")
	}
	if domain.CheckMoney(amount) != nil || !amount.IsPositive() || !amount.IsInteger() {
		return domain.ErrInvalidTransferDetails.WithMessage("transfer amount must be a positive whole number")
	}
	return nil
}
