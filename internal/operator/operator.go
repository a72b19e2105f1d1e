package operator

import (
	"context"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/bank-server/internal/domain"
	"github.com/carson-networks/bank-server/internal/operator/actions"
	"github.com/carson-networks/bank-server/internal/storage"
)

// Operator is the worker that processes items from the queue.
type Operator struct {
	storage storage.Storage
	queue   chan ActionItem
	logger  *logrus.Logger
}

func NewOperator(s storage.Storage, queue chan ActionItem, logger *logrus.Logger) *Operator {
	return &Operator{
		storage: s,
		queue:   queue,
		logger:  logger,
	}
}

// Run processes items until stopped is closed, then drains whatever is still
// queued and returns.
func (o *Operator) Run(stopped <-chan struct{}) {
	for {
		select {
		case item := <-o.queue:
			o.processItem(item)
		case <-stopped:
			for {
				select {
				case item := <-o.queue:
					o.processItem(item)
				default:
					return
				}
			}
		}
	}
}

func (o *Operator) processItem(item ActionItem) {
	item.response <- ActionItemResponse{err: o.perform(item.ctx, item.action)}
}

// perform runs one action as one unit of work: rollback on any error, commit
// otherwise. Errors that are not domain errors come back as StorageFailure.
func (o *Operator) perform(ctx context.Context, action actions.IAction) (err error) {
	if o.logger.IsLevelEnabled(logrus.DebugLevel) {
		o.logger.WithField("action", spew.Sdump(action)).Debug("Operator.Perform")
	}

	writer, err := o.storage.Write(ctx)
	if err != nil {
		return domain.StorageFailure(err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = writer.Rollback(ctx)
			err = domain.StorageFailure(fmt.Errorf("panic in %T: %v", action, r))
		}
	}()

	if err = action.Perform(ctx, writer); err != nil {
		if rbErr := writer.Rollback(ctx); rbErr != nil {
			o.logger.WithError(rbErr).Error("Operator.Rollback")
		}
		return domain.AsError(err)
	}

	if err = writer.Commit(ctx); err != nil {
		_ = writer.Rollback(ctx)
		return domain.StorageFailure(err)
	}
	return nil
}

type ActionItem struct {
	ctx      context.Context
	action   actions.IAction
	response chan ActionItemResponse
}

type ActionItemResponse struct {
	err error
}
